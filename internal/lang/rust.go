package lang

func init() {
	Register(&LanguageSpec{
		Language:       Rust,
		FileExtensions: []string{".rs"},
		FunctionNodeTypes: []string{
			"function_item",
			"function_signature_item",
			"closure_expression",
		},
		ClassNodeTypes: []string{
			"struct_item",
			"enum_item",
			"union_item",
			"trait_item",
			"impl_item",
			"type_item",
		},
		ModuleNodeTypes:   []string{"source_file", "mod_item"},
		CallNodeTypes:     []string{"call_expression", "macro_invocation"},
		ImportNodeTypes:   []string{"use_declaration", "extern_crate_declaration"},
		ImportFromTypes:   []string{"use_declaration"},
		PackageIndicators: []string{"Cargo.toml"},

		BranchingNodeTypes:    []string{"if_expression", "if_let_expression"},
		LoopNodeTypes:         []string{"loop_expression", "while_expression", "while_let_expression"},
		ForNodeTypes:          []string{"for_expression"},
		SwitchNodeTypes:       []string{"match_expression"},
		CaseNodeTypes:         []string{"match_arm"},
		BreakNodeTypes:        []string{"break_expression"},
		ContinueNodeTypes:     []string{"continue_expression"},
		ReturnNodeTypes:       []string{"return_expression"},
		ShortCircuitNodeTypes: []string{"binary_expression"},

		VariableNodeTypes:   []string{"let_declaration"},
		AssignmentNodeTypes: []string{"assignment_expression", "compound_assignment_expr"},
		EnvAccessFunctions:  []string{"std::env::var", "env::var"},
	})
}
