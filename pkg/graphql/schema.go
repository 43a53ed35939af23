// Package graphql serves the Star Wars graph with gqlgen. The executable
// schema in generated.go is produced from schema.graphql; resolvers delegate
// to the services.
package graphql

// SDL returns the schema definition served at /graphql/schema.
func SDL() string {
	return sourceData("schema.graphql")
}
