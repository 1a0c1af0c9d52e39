package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// InstanceType identifies the kind of daybook process.
type InstanceType string

const (
	InstanceServer InstanceType = "serve"
	InstanceMCP    InstanceType = "serve-mcp"
)

// Instance is a running daybook server.
type Instance struct {
	Type      InstanceType `json:"type"`
	PID       int          `json:"pid"`
	Port      int          `json:"port,omitempty"`
	Host      string       `json:"host,omitempty"`
	LogPath   string       `json:"log_path,omitempty"`
	StartedAt time.Time    `json:"started_at"`
}

// URL returns the instance's HTTP base URL, or "" for a stdio instance.
func (i Instance) URL() string {
	if i.Port == 0 {
		return ""
	}
	return fmt.Sprintf("http://%s:%d", i.Host, i.Port)
}

func instancesPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "instances.json"), nil
}

// RegisterInstance adds a new instance entry, cleaning stale entries first.
func RegisterInstance(inst Instance) error {
	path, err := instancesPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	instances, _ := readInstances(path)
	instances = cleanStale(instances)
	instances = append(instances, inst)

	return writeInstances(path, instances)
}

// UnregisterInstance removes an instance by PID.
func UnregisterInstance(pid int) error {
	path, err := instancesPath()
	if err != nil {
		return err
	}

	instances, _ := readInstances(path)
	filtered := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if inst.PID != pid {
			filtered = append(filtered, inst)
		}
	}

	return writeInstances(path, filtered)
}

// ListInstances returns all live instances, cleaning stale entries.
func ListInstances() ([]Instance, error) {
	path, err := instancesPath()
	if err != nil {
		return nil, err
	}

	instances, err := readInstances(path)
	if err != nil {
		return nil, err
	}

	live := cleanStale(instances)
	if len(live) != len(instances) {
		writeInstances(path, live)
	}

	return live, nil
}

// FindInstanceByType returns the most recently started live instance of
// type t, or nil.
func FindInstanceByType(t InstanceType) *Instance {
	instances, err := ListInstances()
	if err != nil {
		return nil
	}
	var found *Instance
	for i := range instances {
		inst := instances[i]
		if inst.Type != t {
			continue
		}
		if found == nil || inst.StartedAt.After(found.StartedAt) {
			found = &inst
		}
	}
	return found
}

// FindInstanceByPort returns the instance using the given port, or nil.
func FindInstanceByPort(port int) *Instance {
	instances, err := ListInstances()
	if err != nil {
		return nil
	}
	for _, inst := range instances {
		if inst.Port == port {
			return &inst
		}
	}
	return nil
}

func readInstances(path string) ([]Instance, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var instances []Instance
	if err := json.Unmarshal(data, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

func writeInstances(path string, instances []Instance) error {
	data, err := json.MarshalIndent(instances, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// cleanStale removes entries whose PID is no longer running.
func cleanStale(instances []Instance) []Instance {
	live := make([]Instance, 0, len(instances))
	for _, inst := range instances {
		if isProcessAlive(inst.PID) {
			live = append(live, inst)
		}
	}
	return live
}
