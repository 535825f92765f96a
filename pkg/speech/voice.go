package speech

// VoiceFor picks the voice for the item at the given queue index.
//
// With rotation disabled the first pool voice is always used. With rotation
// enabled the pool (restricted to the allowlist when the restriction is
// non-empty) is assigned round-robin by index, giving successive items
// different voices. An empty pool yields "", meaning the engine default.
func VoiceFor(index int, pool []string, allowlist []string, rotate bool) string {
	if len(pool) == 0 {
		return ""
	}
	if !rotate {
		return pool[0]
	}

	candidates := pool
	if len(allowlist) > 0 {
		allowed := make(map[string]bool, len(allowlist))
		for _, v := range allowlist {
			allowed[v] = true
		}
		var restricted []string
		for _, v := range pool {
			if allowed[v] {
				restricted = append(restricted, v)
			}
		}
		if len(restricted) > 0 {
			candidates = restricted
		}
	}

	if index < 0 {
		index = 0
	}
	return candidates[index%len(candidates)]
}
