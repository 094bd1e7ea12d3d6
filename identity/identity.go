// Package identity derives the UID/GID of a container's login user from the
// container's IPv4 address and builds the script that provisions that user.
package identity

import (
	"errors"
	"fmt"
	"net/netip"
)

const (
	// BaseID is added to the last octet of the container address to get its UID/GID.
	BaseID = 11000

	// MinID and MaxID bound explicit overrides. Below MinID are system accounts on
	// the images devctr targets; 65534 and up are nobody/nogroup and overflow IDs.
	MinID = 1000
	MaxID = 65533
)

var (
	// ErrInvalidAddress is returned when an address is not a dotted-quad IPv4 address.
	ErrInvalidAddress = errors.New("invalid IPv4 address")

	// ErrInvalidID is returned when an explicit UID/GID override is out of range.
	ErrInvalidID = errors.New("invalid uid/gid")
)

// Identity is the numeric owner of the login user inside a container.
type Identity struct {
	UID int
	GID int
}

func (i Identity) String() string {
	return fmt.Sprintf("%d:%d", i.UID, i.GID)
}

// ParseIPv4 parses s as a dotted-quad IPv4 address.
func ParseIPv4(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w %q: %w", ErrInvalidAddress, s, err)
	}
	if !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%w %q: not an IPv4 address", ErrInvalidAddress, s)
	}
	return addr, nil
}

// FromAddress returns the identity for ip: uid = gid = BaseID + last octet.
func FromAddress(ip string) (Identity, error) {
	addr, err := ParseIPv4(ip)
	if err != nil {
		return Identity{}, err
	}
	octets := addr.As4()
	id := BaseID + int(octets[3])
	return Identity{UID: id, GID: id}, nil
}

// Resolve returns the explicit override when one is given, and the address-derived
// identity otherwise.
func Resolve(ip string, override *int) (Identity, error) {
	if override != nil {
		if err := ValidateID(*override); err != nil {
			return Identity{}, err
		}
		return Identity{UID: *override, GID: *override}, nil
	}
	return FromAddress(ip)
}

// ValidateID checks that id is usable as an explicit UID/GID.
func ValidateID(id int) error {
	if id < MinID || id > MaxID {
		return fmt.Errorf("%w %d: must be between %d and %d", ErrInvalidID, id, MinID, MaxID)
	}
	return nil
}
