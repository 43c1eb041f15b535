//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Priority represents the notification tier of a search
// ENUM(normal,high)
type Priority string
