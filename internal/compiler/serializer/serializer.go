// Package serializer lowers a parsed authorization model Document into the
// OpenFGA authorization-model JSON wire format.
package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/openfga-dslc/openfga-dslc/internal/compiler/ast"
)

// UnsupportedAliasError is returned when a Document contains a `but not`
// exclusion alias. OpenFGA's userset JSON has no standard `difference`
// shape agreed on by this pipeline's consumers, so rather than guess at
// one, serialization is rejected until that shape is decided by whoever
// consumes the emitted model.
type UnsupportedAliasError struct {
	TypeName     string
	RelationName string
	AliasName    string
}

func (e *UnsupportedAliasError) Error() string {
	return fmt.Sprintf("%s.%s: negative alias %q has no defined JSON lowering", e.TypeName, e.RelationName, e.AliasName)
}

// Serialize lowers doc into compact OpenFGA authorization-model JSON.
func Serialize(doc *ast.Document) ([]byte, error) {
	m, err := ToMap(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// SerializeIndent lowers doc into indented JSON, for CLI and file output.
func SerializeIndent(doc *ast.Document) ([]byte, error) {
	m, err := ToMap(doc)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(m, "", "  ")
}

// ToMap lowers doc into the generic map structure that Serialize encodes.
// It is exposed separately so callers that want to inspect or further
// transform the result don't have to round-trip through JSON bytes.
func ToMap(doc *ast.Document) (map[string]interface{}, error) {
	typeDefs := make([]map[string]interface{}, 0, len(doc.Types))
	for _, ty := range doc.Types {
		obj, err := serializeType(ty)
		if err != nil {
			return nil, err
		}
		typeDefs = append(typeDefs, obj)
	}

	return map[string]interface{}{
		"type_definitions": typeDefs,
	}, nil
}

func serializeType(ty *ast.Type) (map[string]interface{}, error) {
	relations, err := serializeRelations(ty.Kind, ty.Relations)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"type":      ty.Kind,
		"relations": relations,
	}, nil
}

// serializeRelations implements the userset arity rule: a relation with no
// aliases lowers to an empty object, one with exactly one alias lowers
// directly to that alias's userset, and one with two or more aliases
// lowers to a union over each alias's userset.
func serializeRelations(typeName string, relations []*ast.Relation) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(relations))

	for _, rel := range relations {
		if len(rel.Aliases) <= 1 {
			content := make(map[string]interface{})
			for _, alias := range rel.Aliases {
				key, obj, err := serializeAlias(typeName, rel.Kind, alias)
				if err != nil {
					return nil, err
				}
				content[key] = obj
			}
			out[rel.Kind] = content
			continue
		}

		children := make([]map[string]interface{}, 0, len(rel.Aliases))
		for _, alias := range rel.Aliases {
			key, obj, err := serializeAlias(typeName, rel.Kind, alias)
			if err != nil {
				return nil, err
			}
			children = append(children, map[string]interface{}{key: obj})
		}
		out[rel.Kind] = map[string]interface{}{
			"union": map[string]interface{}{
				"child": children,
			},
		}
	}

	return out, nil
}

// serializeAlias returns the userset key ("this", "computedUserset", or
// "tupleToUserset") and value for a single alias.
func serializeAlias(typeName, relationName string, alias *ast.Alias) (string, interface{}, error) {
	switch alias.Kind {
	case ast.AliasThis:
		return "this", map[string]interface{}{}, nil

	case ast.AliasNamed:
		if alias.Parent != nil {
			return "tupleToUserset", map[string]interface{}{
				"tupleset": map[string]interface{}{
					"object":   "",
					"relation": *alias.Parent,
				},
				"computedUserset": map[string]interface{}{
					"object":   "",
					"relation": alias.Name,
				},
			}, nil
		}
		return "computedUserset", map[string]interface{}{
			"object":   "",
			"relation": alias.Name,
		}, nil

	case ast.AliasNegative:
		return "", nil, &UnsupportedAliasError{TypeName: typeName, RelationName: relationName, AliasName: alias.Name}

	default:
		return "", nil, fmt.Errorf("%s.%s: unknown alias kind %v", typeName, relationName, alias.Kind)
	}
}
