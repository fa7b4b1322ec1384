// Package util provides small generic helpers shared by llmkit packages:
// pointer helpers, zero-value coalescing and string masking/truncation.
package util
