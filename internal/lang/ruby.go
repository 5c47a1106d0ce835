package lang

func init() {
	Register(&LanguageSpec{
		Language:       Ruby,
		FileExtensions: []string{".rb", ".rake", ".gemspec"},
		FunctionNodeTypes: []string{
			"method",
			"singleton_method",
		},
		ClassNodeTypes:    []string{"class", "module"},
		ModuleNodeTypes:   []string{"program"},
		CallNodeTypes:     []string{"call", "command_call"},
		ImportNodeTypes:   []string{"call"},
		PackageIndicators: []string{"Gemfile"},

		BranchingNodeTypes:    []string{"if", "unless"},
		LoopNodeTypes:         []string{"while", "until"},
		ForNodeTypes:          []string{"for"},
		SwitchNodeTypes:       []string{"case"},
		CaseNodeTypes:         []string{"when", "pattern"},
		BreakNodeTypes:        []string{"break"},
		ContinueNodeTypes:     []string{"next"},
		ReturnNodeTypes:       []string{"return"},
		TryNodeTypes:          []string{"begin"},
		CatchNodeTypes:        []string{"rescue"},
		ShortCircuitNodeTypes: []string{"binary"},

		VariableNodeTypes:       []string{"assignment"},
		AssignmentNodeTypes:     []string{"assignment", "operator_assignment"},
		DecoratorNodeTypes:      []string{},
		EnvAccessMemberPatterns: []string{"ENV"},
	})
}
