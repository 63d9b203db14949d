// Package models defines the records the sync server persists.
package models
