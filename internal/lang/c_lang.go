package lang

func init() {
	Register(&LanguageSpec{
		Language:       C,
		FileExtensions: []string{".c"},
		FunctionNodeTypes: []string{
			"function_definition",
		},
		ClassNodeTypes:  []string{"struct_specifier", "enum_specifier", "union_specifier"},
		FieldNodeTypes:  []string{"field_declaration"},
		ModuleNodeTypes: []string{"translation_unit"},
		CallNodeTypes:   []string{"call_expression"},
		ImportNodeTypes: []string{"preproc_include"},

		BranchingNodeTypes:    []string{"if_statement"},
		LoopNodeTypes:         []string{"while_statement", "do_statement"},
		ForNodeTypes:          []string{"for_statement"},
		SwitchNodeTypes:       []string{"switch_statement"},
		CaseNodeTypes:         []string{"case_statement"},
		BreakNodeTypes:        []string{"break_statement"},
		ContinueNodeTypes:     []string{"continue_statement"},
		ReturnNodeTypes:       []string{"return_statement"},
		ShortCircuitNodeTypes: []string{"binary_expression"},

		VariableNodeTypes:   []string{"declaration"},
		AssignmentNodeTypes: []string{"assignment_expression"},
		EnvAccessFunctions:  []string{"getenv"},
	})
}
