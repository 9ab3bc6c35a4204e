//go:build termania_debug

package judge

const debugAssertions = true
