package lang

func init() {
	Register(&LanguageSpec{
		Language:       PHP,
		FileExtensions: []string{".php"},
		FunctionNodeTypes: []string{
			"function_static_declaration",
			"anonymous_function",
			"function_definition",
			"arrow_function",
			"method_declaration",
		},
		ClassNodeTypes: []string{
			"trait_declaration",
			"enum_declaration",
			"interface_declaration",
			"class_declaration",
		},
		ModuleNodeTypes: []string{"program"},
		CallNodeTypes: []string{
			"member_call_expression",
			"scoped_call_expression",
			"function_call_expression",
			"nullsafe_member_call_expression",
		},

		BranchingNodeTypes:    []string{"if_statement"},
		LoopNodeTypes:         []string{"while_statement", "do_statement"},
		ForNodeTypes:          []string{"for_statement", "foreach_statement"},
		SwitchNodeTypes:       []string{"switch_statement"},
		CaseNodeTypes:         []string{"case_statement", "default_statement"},
		BreakNodeTypes:        []string{"break_statement"},
		ContinueNodeTypes:     []string{"continue_statement"},
		ReturnNodeTypes:       []string{"return_statement"},
		TryNodeTypes:          []string{"try_statement"},
		CatchNodeTypes:        []string{"catch_clause"},
		ShortCircuitNodeTypes: []string{"binary_expression"},

		VariableNodeTypes:   []string{"expression_statement"},
		AssignmentNodeTypes: []string{"assignment_expression"},
		ThrowNodeTypes:      []string{"throw_expression"},
		DecoratorNodeTypes:  []string{"attribute_group"},
		EnvAccessFunctions:  []string{"getenv", "env"},
	})
}
