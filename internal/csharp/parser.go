// Package csharp recovers entities from generated C# entity classes.
//
// This is a best-effort pattern matcher, not a C# parser. It never fails:
// text that does not look like a generated entity is simply not represented
// in the output.
package csharp

import (
	"regexp"
	"strings"

	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/strutil"
	"github.com/hlop3z/nocstudio/internal/typemap"
)

// entitySuffix marks generated entity classes and entity-typed members.
const entitySuffix = "Entity"

var (
	// public [virtual] <Type> <Name> { get; set; } [= <initializer>;]
	propertyRe = regexp.MustCompile(
		`public\s+(?:virtual\s+)?([\w.]+(?:<[^<>]+>)?(?:\[\])?\??)\s+(\w+)\s*\{\s*get;\s*set;\s*\}(?:\s*=\s*[^;]*;)?`)

	// public class <Name>Entity : <Base> {
	classRe = regexp.MustCompile(`public\s+class\s+(\w+)Entity\s*:\s*[\w.<>]+\s*\{`)

	iCollectionRe = regexp.MustCompile(`^ICollection<(.+)>$`)
	listRe        = regexp.MustCompile(`^List<(.+)>$`)
	iEnumerableRe = regexp.MustCompile(`^IEnumerable<(.+)>$`)
)

// inherited names come from the generator's base entity.
var inherited = map[string]bool{
	"Id":        true,
	"CreatedAt": true,
	"UpdatedAt": true,
}

// ParseProperties extracts the properties declared in a class body.
// Nullable markers are dropped: "int?" is recorded as int.
func ParseProperties(body string) []entity.Property {
	var props []entity.Property

	for _, m := range propertyRe.FindAllStringSubmatch(body, -1) {
		rawType, name := m[1], m[2]
		if inherited[name] {
			continue
		}

		collection, base := splitCollection(strings.TrimSuffix(rawType, "?"))
		base = strings.TrimSuffix(base, "?")
		props = append(props, entity.Property{
			Name:           name,
			Type:           typemap.FromSource(resolveType(name, base, collection)),
			CollectionType: collection,
		})
	}

	return props
}

// splitCollection returns the collection kind and element type of a raw
// type token, checking ICollection, List, IEnumerable and [] in that order.
func splitCollection(rawType string) (entity.Collection, string) {
	switch {
	case iCollectionRe.MatchString(rawType):
		return entity.CollectionICollection, iCollectionRe.FindStringSubmatch(rawType)[1]
	case listRe.MatchString(rawType):
		return entity.CollectionList, listRe.FindStringSubmatch(rawType)[1]
	case iEnumerableRe.MatchString(rawType):
		return entity.CollectionIEnumerable, iEnumerableRe.FindStringSubmatch(rawType)[1]
	case strings.HasSuffix(rawType, "[]"):
		return entity.CollectionArray, strings.TrimSuffix(rawType, "[]")
	}
	return entity.CollectionNone, rawType
}

// resolveType applies the navigation and foreign key rules to entity-typed
// members. Other types are returned unchanged.
func resolveType(name, base string, collection entity.Collection) string {
	if !strings.HasSuffix(base, entitySuffix) {
		return base
	}
	if !collection.IsCollection() && strutil.HasIDSuffix(name) {
		// Scalar foreign key: the generator keys entities by Guid.
		return typemap.Guid
	}
	return strings.TrimSuffix(base, entitySuffix)
}

// ParseEntities extracts every "public class XEntity : Base { ... }" block.
// A class body runs until the next class declaration or end of text; only
// the part after its last constructor is searched for properties. Classes
// with no properties are dropped.
func ParseEntities(text string) []entity.Entity {
	locs := classRe.FindAllStringSubmatchIndex(text, -1)
	var entities []entity.Entity

	for i, loc := range locs {
		name := text[loc[2]:loc[3]]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := text[loc[1]:end]

		props := ParseProperties(afterConstructors(name, body))
		if len(props) == 0 {
			continue
		}

		entities = append(entities, entity.Entity{
			Name:       name,
			Properties: props,
		})
	}

	return entities
}

// afterConstructors returns the part of body following the signature of the
// last "public <Name>Entity(...)" constructor.
func afterConstructors(name, body string) string {
	ctorRe := regexp.MustCompile(`public\s+` + regexp.QuoteMeta(name+entitySuffix) + `\s*\([^)]*\)`)
	locs := ctorRe.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return body
	}
	return body[locs[len(locs)-1][1]:]
}

// ParseFile parses an entity file from an existing project and marks the
// results with their provenance.
func ParseFile(path, text string) []entity.Entity {
	entities := ParseEntities(text)
	for i := range entities {
		entities[i].FilePath = path
		entities[i].IsExisting = true
	}
	return entities
}
