package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithRetention keeps at most n seasons, evicting the oldest first.
// n <= 0 keeps every season.
func WithRetention(n int) Option {
	return func(s *TreapStore) {
		s.retention = n
	}
}
