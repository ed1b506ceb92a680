package lifecycle

// BusyTargets returns a copy of the build directories currently held by runs.
// This is exported for testing purposes only.
func (o *Orchestrator) BusyTargets() map[string]string {
	o.mu.Lock()
	defer o.mu.Unlock()

	busy := make(map[string]string, len(o.busy))
	for k, v := range o.busy {
		busy[k] = v
	}
	return busy
}
