package batch

// Sample returns a starter document with one rule of every kind, in the
// generic shape LoadDocument decodes.
func Sample() map[string]any {
	return map[string]any{
		"configure": map[string]any{
			"encoding":         "utf-8",
			"output_directory": "generated",
			"overwrite":        true,
			"paths":            []string{"templates"},
			"proto_files":      []string{"proto/**/*.proto"},
			"protoc_includes":  []string{},
			"protoc_flags":     []string{},
			"custom_variables": map[string]any{"project": "example"},
		},
		"rules": []map[string]any{
			{"service": map[string]any{
				"name":             "example.ExampleService",
				"rpc_include":      "",
				"rpc_exclude":      "",
				"service_template": []string{"service.h.tmpl:${ .service.NameLowerRule }.h"},
				"rpc_template": []map[string]any{{
					"input":     "rpc.cpp.tmpl",
					"output":    "rpc/${ .rpc.NameLowerRule }.cpp",
					"overwrite": false,
				}},
			}},
			{"message": map[string]any{
				"name":             "example.ExampleMessage",
				"field_include":    "",
				"ignore":           []string{},
				"message_template": []string{"message.tmpl:${ .message.NameLowerRule }.txt"},
			}},
			{"enum": map[string]any{
				"name":               "example.ExampleEnum",
				"enum_template":      []string{"enum.tmpl:${ .enum.NameLowerRule }.txt"},
				"enumvalue_template": []string{},
			}},
			{"global": map[string]any{
				"global_template": []string{"index.tmpl:index.txt"},
			}},
		},
	}
}
