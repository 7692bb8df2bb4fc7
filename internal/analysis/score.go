package analysis

import "strings"

// Testability scoring deductions. The score starts at 100 and each smell
// subtracts a fixed amount; the floor is 0.
const (
	deductPerExtraDep  = 8  // per constructor dependency beyond two
	deductStaticTime   = 15 // direct DateTime.Now / UtcNow usage
	deductFileIO       = 10 // direct File/Directory calls
	deductStaticClass  = 20 // static classes cannot be substituted
	deductLargeSurface = 10 // more than eight public methods
	deductNewInside    = 10 // news up its own collaborators
)

// ScoreClass computes the testability score and the smell list for a class.
// body is the raw source text of the class declaration.
func ScoreClass(info ClassInfo, body string) (int, []string) {
	score := 100
	var smells []string

	if extra := len(info.CtorDeps) - 2; extra > 0 {
		score -= extra * deductPerExtraDep
		smells = append(smells, "many constructor dependencies")
	}

	if strings.Contains(body, "DateTime.Now") || strings.Contains(body, "DateTime.UtcNow") {
		score -= deductStaticTime
		smells = append(smells, "direct system clock access")
	}

	if strings.Contains(body, "File.") || strings.Contains(body, "Directory.") {
		score -= deductFileIO
		smells = append(smells, "direct filesystem access")
	}

	if info.IsStatic {
		score -= deductStaticClass
		smells = append(smells, "static class")
	}

	if info.PublicAPI > 8 {
		score -= deductLargeSurface
		smells = append(smells, "large public surface")
	}

	if newsUpCollaborators(body) {
		score -= deductNewInside
		smells = append(smells, "constructs own collaborators")
	}

	if score < 0 {
		score = 0
	}
	return score, smells
}

// collaboratorSuffixes name the dependency shapes the curriculum calls out:
// a class that news these up itself cannot substitute them in tests.
var collaboratorSuffixes = []string{"Service", "Repository", "Client", "Manager", "Provider"}

// newsUpCollaborators looks for `new XxxService(` style instantiation.
func newsUpCollaborators(body string) bool {
	rest := body
	for {
		i := strings.Index(rest, "new ")
		if i < 0 {
			return false
		}
		rest = rest[i+len("new "):]
		end := strings.IndexAny(rest, "(<{ \n\t;")
		if end < 0 || rest[end] != '(' {
			continue
		}
		typeName := rest[:end]
		for _, suffix := range collaboratorSuffixes {
			if strings.HasSuffix(typeName, suffix) {
				return true
			}
		}
	}
}
