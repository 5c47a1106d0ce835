package lang

func init() {
	Register(&LanguageSpec{
		Language:       JavaScript,
		FileExtensions: []string{".js", ".jsx", ".mjs", ".cjs"},
		FunctionNodeTypes: []string{
			"function_declaration",
			"generator_function_declaration",
			"function_expression",
			"arrow_function",
			"method_definition",
		},
		ClassNodeTypes:    []string{"class_declaration", "class"},
		ModuleNodeTypes:   []string{"program"},
		CallNodeTypes:     []string{"call_expression", "new_expression"},
		ImportNodeTypes:   []string{"import_statement", "lexical_declaration", "export_statement"},
		ImportFromTypes:   []string{"import_statement", "lexical_declaration", "export_statement"},
		PackageIndicators: []string{"package.json"},

		BranchingNodeTypes:    []string{"if_statement"},
		LoopNodeTypes:         []string{"while_statement", "do_statement"},
		ForNodeTypes:          []string{"for_statement", "for_in_statement"},
		SwitchNodeTypes:       []string{"switch_statement"},
		CaseNodeTypes:         []string{"switch_case", "switch_default"},
		BreakNodeTypes:        []string{"break_statement"},
		ContinueNodeTypes:     []string{"continue_statement"},
		ReturnNodeTypes:       []string{"return_statement"},
		TryNodeTypes:          []string{"try_statement"},
		CatchNodeTypes:        []string{"catch_clause"},
		ShortCircuitNodeTypes: []string{"binary_expression"},

		VariableNodeTypes:      []string{"lexical_declaration", "variable_declaration"},
		AssignmentNodeTypes:    []string{"assignment_expression", "augmented_assignment_expression"},
		ThrowNodeTypes:         []string{"throw_statement"},
		EnvAccessMemberPatterns: []string{"process.env"},
	})
}
