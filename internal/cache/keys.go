package cache

import "strings"

const (
	GlobalKeyPrefix = "spellwrite"
)

// GenerateCacheKey builds a key of the form prefix:service:type:id
func GenerateCacheKey(serviceName, objectType, identifier string) string {
	return strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
}
