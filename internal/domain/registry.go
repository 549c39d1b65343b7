package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
)

// Registration is one provider's contribution to the tool registry: a named
// descriptor set at an explicit priority. When two registrations carry the
// same tool name, the higher priority wins; equal priorities resolve to the
// later registration. Override is therefore declared, not an accident of
// package load order.
type Registration struct {
	Provider string
	Priority int
	Tools    []ToolDescriptor
}

// ToolSnapshot is the effective registry view: name-sorted descriptors plus
// a fingerprint over everything but the handlers.
type ToolSnapshot struct {
	ETag  string
	Tools []ToolDescriptor
}

// Registry resolves tool registrations into an effective descriptor set.
type Registry struct {
	mu   sync.RWMutex
	regs []Registration
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a provider's descriptor set. Descriptors with empty names or
// nil handlers are dropped; an empty registration is a no-op.
func (r *Registry) Register(reg Registration) {
	kept := make([]ToolDescriptor, 0, len(reg.Tools))
	for _, tool := range reg.Tools {
		if tool.Name == "" || tool.Handler == nil {
			continue
		}
		kept = append(kept, tool)
	}
	if len(kept) == 0 {
		return
	}
	reg.Tools = kept

	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs = append(r.regs, reg)
}

// Lookup returns the effective descriptor for a tool name.
func (r *Registry) Lookup(name string) (ToolDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	effective := r.resolveLocked()
	tool, ok := effective[name]
	return tool, ok
}

// Snapshot returns the effective descriptor list in deterministic
// (name-sorted) order.
func (r *Registry) Snapshot() ToolSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	effective := r.resolveLocked()
	names := make([]string, 0, len(effective))
	for name := range effective {
		names = append(names, name)
	}
	sort.Strings(names)

	tools := make([]ToolDescriptor, 0, len(names))
	for _, name := range names {
		tools = append(tools, effective[name])
	}
	return ToolSnapshot{
		ETag:  fingerprintTools(tools),
		Tools: tools,
	}
}

// Providers returns the provider names in registration order, for
// diagnostics.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.regs))
	for _, reg := range r.regs {
		names = append(names, reg.Provider)
	}
	return names
}

func (r *Registry) resolveLocked() map[string]ToolDescriptor {
	effective := make(map[string]ToolDescriptor)
	priorities := make(map[string]int)
	for _, reg := range r.regs {
		for _, tool := range reg.Tools {
			if prev, ok := priorities[tool.Name]; ok && reg.Priority < prev {
				continue
			}
			effective[tool.Name] = tool
			priorities[tool.Name] = reg.Priority
		}
	}
	return effective
}

func fingerprintTools(tools []ToolDescriptor) string {
	type entry struct {
		Name        string      `json:"name"`
		Description string      `json:"description"`
		Params      []ParamSpec `json:"params"`
		ReadOnly    bool        `json:"read_only"`
	}
	entries := make([]entry, 0, len(tools))
	for _, tool := range tools {
		entries = append(entries, entry{
			Name:        tool.Name,
			Description: tool.Description,
			Params:      tool.Params,
			ReadOnly:    tool.ReadOnly,
		})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
