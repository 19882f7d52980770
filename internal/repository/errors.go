// Package repository implements parameterized-SQL data access for users,
// cars and rentals. Sentinel errors defined here let handlers and services
// distinguish failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when a user insert hits the unique email
// constraint. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrCarNotFound is returned when a car lookup matches no row.
var ErrCarNotFound = errors.New("car not found")

// ErrRentalNotFound is returned when a rental lookup matches no row.
var ErrRentalNotFound = errors.New("rental not found")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")
