package rate

const keyPrefix = "pr:"

func clientKey(prefix, client string) string {
	if prefix == "" {
		prefix = keyPrefix
	}
	return prefix + client
}
