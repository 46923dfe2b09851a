// Package main provides the entry point for the identity management
// application. It initializes and runs a web server using the Fiber framework
// that handles user registration and login, JWT access tokens with rotating
// refresh tokens, role-based access control over a module and feature tree,
// and an append-only audit trail through a REST API. The application uses
// gorm for data persistence.
package main
