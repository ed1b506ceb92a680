package domain

import "maps"

// Command is an external process invocation.
type Command struct {
	// Args holds the program name followed by its arguments.
	Args []string
	Dir  string
	// Env overrides variables of the inherited environment.
	Env map[string]string
}

// NewCommand returns a command running args in dir.
func NewCommand(dir string, args ...string) Command {
	return Command{Args: args, Dir: dir}
}

// WithEnv returns a copy of c with key set in its environment.
func (c Command) WithEnv(key, value string) Command {
	env := maps.Clone(c.Env)
	if env == nil {
		env = make(map[string]string, 1)
	}
	env[key] = value
	c.Env = env
	return c
}
