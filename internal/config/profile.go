package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ProfileFileName is the profile file name inside Dir.
const ProfileFileName = "profile.json"

// Profile records the learner's choices from the most recent plan run so
// other commands can surface where they stand.
type Profile struct {
	Workspace string    `json:"workspace"`
	Solution  string    `json:"solution,omitempty"`
	Skill     string    `json:"skill"`
	PlanDays  int       `json:"plan_days"`
	PlanFile  string    `json:"plan_file"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoadProfile reads the workspace profile. A missing file returns nil without
// an error; no plan has been generated yet.
func LoadProfile(workspace string) (*Profile, error) {
	path := filepath.Join(workspace, Dir, ProfileFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &p, nil
}

// Save writes the profile to .testlens/profile.json in the workspace.
func (p *Profile) Save(workspace string) error {
	dir := filepath.Join(workspace, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ProfileFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}
