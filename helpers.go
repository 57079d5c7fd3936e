package dailyquote

// Bool returns a pointer to a bool.
func Bool(v bool) *bool { return &v }
