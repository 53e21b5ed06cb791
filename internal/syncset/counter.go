package syncset

// Counter hands out timeline signal values. It outlives any SyncSet so
// values keep increasing across rebuilds. The zero value starts at 1 since a
// timeline semaphore starts at 0 and a signal must exceed the current value.
type Counter struct {
	last uint64
}

// Next returns the value for the next submission.
func (c *Counter) Next() uint64 {
	c.last++
	return c.last
}

// Last returns the most recently issued value, or 0 if none was issued.
func (c *Counter) Last() uint64 {
	return c.last
}
