package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// PolicyFileName is the optional command allow-list file inside .appdna/.
const PolicyFileName = "commands.toml"

// CommandPolicy restricts which command names the command bridge will
// execute remotely. When no policy file exists every registered command is
// callable, matching the legacy wire behavior.
type CommandPolicy struct {
	Allow []string `toml:"allow"`

	allowed map[string]struct{}
}

// LoadCommandPolicy reads <root>/.appdna/commands.toml. A missing file
// returns (nil, nil): no policy means no restriction.
func LoadCommandPolicy(root string) (*CommandPolicy, error) {
	path := filepath.Join(root, ConfigDirName, PolicyFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read command policy: %w", err)
	}

	var policy CommandPolicy
	if err := toml.Unmarshal(data, &policy); err != nil {
		return nil, fmt.Errorf("parse command policy %s: %w", path, err)
	}

	policy.allowed = make(map[string]struct{}, len(policy.Allow))
	for _, name := range policy.Allow {
		policy.allowed[strings.TrimSpace(name)] = struct{}{}
	}
	return &policy, nil
}

// Allows reports whether the named command may be executed remotely.
// A nil policy allows everything.
func (p *CommandPolicy) Allows(name string) bool {
	if p == nil {
		return true
	}
	_, ok := p.allowed[strings.TrimSpace(name)]
	return ok
}
