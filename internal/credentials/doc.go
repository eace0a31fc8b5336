// Package credentials locates the destination API key.
package credentials
