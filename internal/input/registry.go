package input

import "fmt"

// Command is a named, invokable editor action. Commands are looked up by
// name rather than scripted (spec's explicit non-goal: no embedded
// scripting language), mirroring a name -> handler registry.
type Command struct {
	Name        string
	Description string
	Run         func(ctx any) error
}

// Registry is a name -> Command map with typed registration, grounded on
// the same register-by-name shape used for tool registration elsewhere in
// the corpus.
type Registry struct {
	commands map[string]Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds cmd, returning an error if its name is already registered.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("input: command has no name")
	}

	if _, exists := r.commands[cmd.Name]; exists {
		return fmt.Errorf("input: command %q already registered", cmd.Name)
	}

	r.commands[cmd.Name] = cmd

	return nil
}

// Lookup returns the command named name, if registered.
func (r *Registry) Lookup(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names returns every registered command name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}

	return names
}
