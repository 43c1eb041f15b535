//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// NotifyReason labels the availability state transition observed by a check
// ENUM(first_availability_found,new_availability,availability_disappeared,significant_increase,availability_unchanged,no_availability)
type NotifyReason string
