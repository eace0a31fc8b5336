// Package importfile reads the JSON export of source tickets and their notes.
package importfile
