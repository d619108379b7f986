// Querykit serves paginated searches over a relational or document store,
// driven entirely by query-string parameters.
//
// Usage:
//
//	# Load demo users, posts and tags into the configured database
//	querykit seed --config querykit.yaml
//
//	# Serve GET /v1/:collection
//	querykit serve --config querykit.yaml
//
//	# Search the demo data
//	curl 'localhost:8080/v1/users?filter=ali&sort_by=name&sort_direction=ASC&details=posts'
package main

func main() {
	Execute()
}
