package lang

func init() {
	Register(&LanguageSpec{
		Language:          Python,
		FileExtensions:    []string{".py"},
		FunctionNodeTypes: []string{"function_definition", "lambda"},
		ClassNodeTypes:    []string{"class_definition"},
		ModuleNodeTypes:   []string{"module"},
		CallNodeTypes:     []string{"call", "with_statement"},
		ImportNodeTypes:   []string{"import_statement"},
		ImportFromTypes:   []string{"import_from_statement"},
		PackageIndicators: []string{"__init__.py"},

		BranchingNodeTypes:    []string{"if_statement"},
		LoopNodeTypes:         []string{"while_statement"},
		ForNodeTypes:          []string{"for_statement"},
		SwitchNodeTypes:       []string{"match_statement"},
		CaseNodeTypes:         []string{"case_clause"},
		BreakNodeTypes:        []string{"break_statement"},
		ContinueNodeTypes:     []string{"continue_statement"},
		ReturnNodeTypes:       []string{"return_statement"},
		TryNodeTypes:          []string{"try_statement"},
		CatchNodeTypes:        []string{"except_clause"},
		ShortCircuitNodeTypes: []string{"boolean_operator"},

		VariableNodeTypes:       []string{"assignment", "augmented_assignment"},
		AssignmentNodeTypes:     []string{"assignment", "augmented_assignment"},
		ThrowNodeTypes:          []string{"raise_statement"},
		DecoratorNodeTypes:      []string{"decorator"},
		EnvAccessFunctions:      []string{"os.getenv", "os.environ.get"},
		EnvAccessMemberPatterns: []string{"os.environ"},
	})
}
