// Package Swagger go-employee-directory
//
// An API to allow you to interact with a go-employee-directory.
//
//   Schemes: http, https
//   Version: 1.0
//   Host: localhost:8080
//   BasePath:/
//
//   Consumes:
//   - application/json
//
//   Produces:
//   - application/json
//
//   Security:
//   - basic
//
//  SecurityDefinitions:
//  basic:
//    type: basic
//
// swagger:meta
package swagger
