package lang

func init() {
	Register(&LanguageSpec{
		Language:          Java,
		FileExtensions:    []string{".java"},
		FunctionNodeTypes: []string{"method_declaration", "constructor_declaration"},
		ClassNodeTypes: []string{
			"class_declaration",
			"interface_declaration",
			"enum_declaration",
			"annotation_type_declaration",
			"record_declaration",
		},
		FieldNodeTypes:  []string{"field_declaration"},
		ModuleNodeTypes: []string{"program"},
		CallNodeTypes:   []string{"method_invocation", "object_creation_expression"},
		ImportNodeTypes: []string{"import_declaration"},
		ImportFromTypes: []string{"import_declaration"},

		BranchingNodeTypes:    []string{"if_statement"},
		LoopNodeTypes:         []string{"while_statement", "do_statement"},
		ForNodeTypes:          []string{"for_statement", "enhanced_for_statement"},
		SwitchNodeTypes:       []string{"switch_expression", "switch_statement"},
		CaseNodeTypes:         []string{"switch_block_statement_group", "switch_rule"},
		BreakNodeTypes:        []string{"break_statement"},
		ContinueNodeTypes:     []string{"continue_statement"},
		ReturnNodeTypes:       []string{"return_statement"},
		TryNodeTypes:          []string{"try_statement"},
		CatchNodeTypes:        []string{"catch_clause"},
		ShortCircuitNodeTypes: []string{"binary_expression"},

		AssignmentNodeTypes: []string{"assignment_expression"},
		ThrowNodeTypes:      []string{"throw_statement"},
		ThrowsClauseField:   "throws",
		EnvAccessFunctions:  []string{"System.getenv"},
	})
}
