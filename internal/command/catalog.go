package command

// Entry describes one console command for help output.
type Entry struct {
	Name    string
	Usage   string
	Summary string
}

var catalog = []Entry{
	{Name: "run", Usage: "run <task> [--priority=low|normal|high] [--deliverable=<label>]", Summary: "Dispatch a mission to the agent swarm"},
	{Name: "agents", Usage: "agents", Summary: "List the agent roster"},
	{Name: "stack", Usage: "stack [add <task> | pop | clear]", Summary: "Show or edit the queued task stack"},
	{Name: "history", Usage: "history", Summary: "Show recently completed missions"},
	{Name: "tools", Usage: "tools", Summary: "List the simulated tool surface"},
	{Name: "help", Usage: "help", Summary: "Show this command list"},
	{Name: "clear", Usage: "clear", Summary: "Clear the transcript"},
}

// Catalog returns the command entries in display order.
func Catalog() []Entry {
	return append([]Entry(nil), catalog...)
}

// Lookup returns the entry for name, or a zero Entry.
func Lookup(name string) Entry {
	for _, s := range catalog {
		if s.Name == name {
			return s
		}
	}
	return Entry{}
}
