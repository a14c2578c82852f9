// Package router decides whether a command shared across several bot
// instances is addressed to this host.
package router

// IsTarget reports whether a command with args targets localHost. No
// arguments addresses every instance; otherwise the first argument must equal
// localHost exactly.
func IsTarget(args []string, localHost string) bool {
	if len(args) == 0 {
		return true
	}
	return args[0] == localHost
}

// Strip drops a leading host argument naming localHost and returns the rest.
func Strip(args []string, localHost string) []string {
	if len(args) > 0 && args[0] == localHost {
		return args[1:]
	}
	return args
}
