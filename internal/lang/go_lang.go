package lang

func init() {
	Register(&LanguageSpec{
		Language:          Go,
		FileExtensions:    []string{".go"},
		FunctionNodeTypes: []string{"function_declaration", "method_declaration", "func_literal"},
		ClassNodeTypes:    []string{"type_spec", "type_alias"},
		ModuleNodeTypes:   []string{"source_file"},
		CallNodeTypes:     []string{"call_expression"},
		ImportNodeTypes:   []string{"import_declaration"},
		ImportFromTypes:   []string{"import_declaration"},
		PackageIndicators: []string{"go.mod"},

		BranchingNodeTypes:    []string{"if_statement"},
		ForNodeTypes:          []string{"for_statement"},
		SwitchNodeTypes:       []string{"expression_switch_statement", "type_switch_statement"},
		CaseNodeTypes:         []string{"expression_case", "type_case", "communication_case"},
		BreakNodeTypes:        []string{"break_statement"},
		ContinueNodeTypes:     []string{"continue_statement"},
		ReturnNodeTypes:       []string{"return_statement"},
		ShortCircuitNodeTypes: []string{"binary_expression"},

		VariableNodeTypes:   []string{"var_declaration", "short_var_declaration"},
		AssignmentNodeTypes: []string{"assignment_statement", "short_var_declaration"},
		EnvAccessFunctions:  []string{"os.Getenv", "os.LookupEnv"},
	})
}
