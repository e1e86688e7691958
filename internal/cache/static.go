package cache

var staticCache = NewCache[string, string]()

// GetStaticHash returns the ETag recorded for an embedded preview asset.
func GetStaticHash(path string) (string, bool) {
	return staticCache.Get(path)
}

func SetStaticHash(path, hash string) {
	staticCache.Set(path, hash)
}
