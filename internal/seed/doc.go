// Package seed loads member accounts from JSON or YAML files.
//
// A seed file is a list of records:
//
//	- username: alice
//	  email: alice@example.com
//	  password: pw1          # null or omitted: account cannot log in
//	  birthdate: {year: 1990, month: 6, day: 15}
//	  languages: [English, French]
//	  accepted_tos: 1
//
// Loading is idempotent: records whose username or email already exists are
// skipped and reported in Result.Skipped.
package seed
