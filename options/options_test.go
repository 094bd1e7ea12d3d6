package options

import (
	"reflect"
	"testing"
)

func TestToArgs(t *testing.T) {
	tests := map[string]struct {
		s        any
		expected []string
	}{
		"empty": {
			s:        ManagementOptions{},
			expected: nil,
		},
		"name": {
			s: ManagementOptions{
				Name: "dev1",
			},
			expected: []string{
				"--name", "dev1",
			},
		},
		"name and detach": {
			s: ManagementOptions{
				Detach: true,
				Name:   "dev1",
			},
			expected: []string{
				"--detach", // bools don't get a value, just include the flag name.
				"--name", "dev1",
			},
		},
		"labels sorted": {
			s: ManagementOptions{
				Label: map[string]string{
					"spec-hash": "abc",
					"owner":     "devctr",
				},
			},
			expected: []string{
				"--label", "owner=devctr",
				"--label", "spec-hash=abc",
			},
		},
		"repeated volumes": {
			s: ManagementOptions{
				Volume: []string{"vol-dev1:/home", "/sys/fs/cgroup:/sys/fs/cgroup:ro"},
			},
			expected: []string{
				"--volume", "vol-dev1:/home",
				"--volume", "/sys/fs/cgroup:/sys/fs/cgroup:ro",
			},
		},
		"container run": {
			s: RunContainer{
				ManagementOptions: ManagementOptions{
					Detach:     true,
					Name:       "dev1",
					Network:    "dev2-net",
					IP:         "10.0.0.7",
					Hostname:   "dev1",
					Privileged: true,
				},
			},
			expected: []string{
				"--detach",
				"--name", "dev1",
				"--network", "dev2-net",
				"--ip", "10.0.0.7",
				"--hostname", "dev1",
				"--privileged",
			},
		},
		"exec as user with tty": {
			s: ExecContainer{
				ProcessOptions: ProcessOptions{
					Interactive: true,
					TTY:         true,
					User:        "alice",
				},
			},
			expected: []string{
				"--interactive",
				"--tty",
				"--user", "alice",
			},
		},
		"pointer": {
			s: &InspectContainer{
				Format: "{{.State.Status}}",
			},
			expected: []string{
				"--format", "{{.State.Status}}",
			},
		},
		"list with filters": {
			s: ListContainers{
				All:    true,
				Format: "json",
				Filter: []string{"label=spec-hash"},
			},
			expected: []string{
				"--all",
				"--format", "json",
				"--filter", "label=spec-hash",
			},
		},
		"not a struct": {
			s:        "--all",
			expected: nil,
		},
	}

	for testName, testCase := range tests {
		t.Run(testName, func(t *testing.T) {
			got := ToArgs(testCase.s)
			if !reflect.DeepEqual(got, testCase.expected) {
				t.Errorf("got %v, want %v", got, testCase.expected)
			}
		})
	}
}
