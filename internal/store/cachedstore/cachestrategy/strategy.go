// Package cachestrategy defines cache eviction strategy interfaces.
package cachestrategy

// Strategy defines the interface for cache eviction strategies.
type Strategy interface {
	Get(key string) (string, bool)
	Add(key, value string) bool
	Remove(key string) bool
	Purge()
	Len() int
}
