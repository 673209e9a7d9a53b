package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "head": true, "options": true,
}

type operation struct {
	responses map[string]bool
	// required parameters keyed by "in:name"
	required map[string]bool
}

type spec struct {
	paths map[string]map[string]operation
	// response-body properties per definition
	definitions map[string]map[string]bool
}

func loadSpec(path string) (spec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return spec{}, err
	}
	return parseSpec(raw)
}

// parseSpec reads a swagger 2.0 document. YAML is a superset of JSON, so
// either encoding is accepted.
func parseSpec(raw []byte) (spec, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return spec{}, err
	}

	pathsMap, ok := toMap(doc["paths"])
	if !ok {
		return spec{}, errors.New("missing top-level paths object")
	}

	out := spec{
		paths:       make(map[string]map[string]operation),
		definitions: make(map[string]map[string]bool),
	}

	for pathKey, pathEntry := range pathsMap {
		methods, ok := toMap(pathEntry)
		if !ok {
			continue
		}
		ops := make(map[string]operation)
		for method, entry := range methods {
			method = strings.ToLower(strings.TrimSpace(method))
			opMap, ok := toMap(entry)
			if !supportedMethods[method] || !ok {
				continue
			}
			ops[method] = parseOperation(opMap)
		}
		if len(ops) > 0 {
			out.paths[pathKey] = ops
		}
	}

	if defs, ok := toMap(doc["definitions"]); ok {
		for name, def := range defs {
			defMap, _ := toMap(def)
			props, _ := toMap(defMap["properties"])
			set := make(map[string]bool, len(props))
			for prop := range props {
				set[prop] = true
			}
			out.definitions[name] = set
		}
	}

	return out, nil
}

func parseOperation(opMap map[string]any) operation {
	op := operation{responses: map[string]bool{}, required: map[string]bool{}}

	if responses, ok := toMap(opMap["responses"]); ok {
		for code := range responses {
			if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
				op.responses[code] = true
			}
		}
	}

	params, _ := opMap["parameters"].([]any)
	for _, p := range params {
		pm, ok := toMap(p)
		if !ok {
			continue
		}
		if req, _ := pm["required"].(bool); req {
			op.required[fmt.Sprintf("%v:%v", pm["in"], pm["name"])] = true
		}
	}
	return op
}

func toMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// compare lists every breaking difference from base to revision: removed
// paths, operations, response codes and model properties, and parameters
// that became required.
func compare(base, revision spec) []string {
	var issues []string

	for path, baseOps := range base.paths {
		revOps, ok := revision.paths[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}
		for method, baseOp := range baseOps {
			label := strings.ToUpper(method) + " " + path
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, "removed operation: "+label)
				continue
			}
			for code := range baseOp.responses {
				if !revOp.responses[code] {
					issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", label, strings.ToUpper(code)))
				}
			}
			for param := range revOp.required {
				if !baseOp.required[param] {
					issues = append(issues, fmt.Sprintf("new required parameter: %s -> %s", label, param))
				}
			}
		}
	}

	for name, props := range base.definitions {
		revProps, ok := revision.definitions[name]
		if !ok {
			issues = append(issues, "removed definition: "+name)
			continue
		}
		for prop := range props {
			if !revProps[prop] {
				issues = append(issues, fmt.Sprintf("removed property: %s.%s", name, prop))
			}
		}
	}

	slices.Sort(issues)
	return issues
}
