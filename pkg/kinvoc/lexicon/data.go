package lexicon

// Data is the raw, serializable form of a lexicon. A Lexicon is compiled
// from it with New. Fields left empty in an override file inherit the
// built-in research defaults, so a YAML file only needs to spell out the
// lists it changes.
type Data struct {
	// Terms is the full kinship inventory in canonical output order.
	Terms []string `yaml:"terms"`

	// ParentTerms and GrandparentTerms carve Terms into categories;
	// everything else is "extended". The two sets must be disjoint.
	ParentTerms      []string `yaml:"parent_terms"`
	GrandparentTerms []string `yaml:"grandparent_terms"`

	// TitleTerms are the terms that commonly precede a proper name
	// ("Auntie Sarah", "Grandma Peggy"). Core parent terms are left out:
	// mom/dad essentially never take a following name.
	TitleTerms []string `yaml:"title_terms"`

	// Compounds maps a space-joined adjacent pair to its single lexeme,
	// e.g. "grand ma" -> "grandma".
	Compounds map[string]string `yaml:"compounds"`

	// Discourse particles are stripped before the standalone-utterance test.
	Discourse []string `yaml:"discourse"`

	Determiners  []string `yaml:"determiners"`
	Coordinators []string `yaml:"coordinators"`

	// Variants folds dialectal spellings, e.g. neighbour -> neighbor.
	Variants map[string]string `yaml:"variants"`

	// NonKin and Benchmark are comparison vocabularies for the frequency
	// profile: socially similar non-kin nouns and stable function words.
	NonKin    []string `yaml:"nonkin"`
	Benchmark []string `yaml:"benchmark"`

	// Agentives folds derivational %mor lemmas, e.g. teach -> teacher
	// for teach&dv-AGT.
	Agentives map[string]string `yaml:"agentives"`

	// Clusters groups morphological variants into families for the
	// correlation robustness check. Order of Names is report order.
	Clusters []Cluster `yaml:"clusters"`
}

// Cluster is a named family of term variants (e.g. MOM: mom, mommy, ...).
type Cluster struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// Defaults returns the built-in North American English research lexicon.
func Defaults() Data {
	return Data{
		Terms: []string{
			"mom", "mommy", "momma", "mama", "ma", "mother",
			"dad", "daddy", "dada", "papa", "pa", "father",
			"parent",
			"grandma", "grandpa", "granny", "gramma", "nana", "grandmom", "grandmommy",
			"grandmother", "grandfather", "granddad", "granddaddy", "gramps", "grampa",
			"grandpapa", "grandmama", "grandparent",
			"aunt", "auntie", "aunty", "uncle", "cousin", "niece", "nephew",
			"brother", "sister", "sibling", "sissy",
			"son", "daughter", "grandchild", "grandson", "granddaughter",
			"stepmom", "stepdad", "stepmother", "stepfather", "stepsister", "stepbrother",
			"stepson", "stepdaughter", "stepchild",
		},
		ParentTerms: []string{
			"mom", "mommy", "momma", "mama", "ma", "mother",
			"dad", "daddy", "dada", "papa", "pa", "father",
		},
		GrandparentTerms: []string{
			"grandma", "grandpa", "granny", "gramma", "nana", "grandmom", "grandmommy",
			"grandmother", "grandfather", "granddad", "granddaddy", "gramps", "grampa",
			"grandpapa", "grandmama", "grandparent",
		},
		TitleTerms: []string{
			"aunt", "auntie", "aunty", "uncle", "brother", "sister",
			"grandma", "grandpa", "granny", "gramma", "nana", "grandmom", "grandmommy",
			"grandmother", "grandfather", "granddad", "granddaddy", "gramps", "grampa",
			"grandpapa", "grandmama",
			"mama", "papa",
		},
		Compounds: map[string]string{
			"grand ma":      "grandma",
			"grand mom":     "grandmom",
			"grand mommy":   "grandmommy",
			"grand mother":  "grandmother",
			"grand pa":      "grandpa",
			"grand dad":     "granddad",
			"grand daddy":   "granddaddy",
			"grand father":  "grandfather",
			"grand papa":    "grandpapa",
			"grand mama":    "grandmama",
			"step mom":      "stepmom",
			"step dad":      "stepdad",
			"step mother":   "stepmother",
			"step father":   "stepfather",
			"step sister":   "stepsister",
			"step brother":  "stepbrother",
			"step son":      "stepson",
			"step daughter": "stepdaughter",
			"step child":    "stepchild",
		},
		Discourse: []string{
			"hey", "hi", "hello", "oh", "okay", "ok", "yeah", "yep", "yes", "no", "please",
			"well", "uh", "um", "huh", "hm", "hmm", "mm",
		},
		Determiners: []string{
			"a", "an", "the",
			"this", "that", "these", "those",
			"my", "your", "his", "her", "our", "their", "its", "whose",
			"some", "any", "no", "each", "every", "either", "neither", "both", "all",
			"much", "many", "few", "several", "another", "other", "such", "one",
		},
		Coordinators: []string{"and", "or"},
		Variants: map[string]string{
			"neighbour":  "neighbor",
			"neighbours": "neighbor",
		},
		NonKin: []string{
			"teacher", "doctor", "boss", "neighbor", "friend",
			"waiter", "nurse", "police", "baby", "kid",
		},
		Benchmark: []string{"the", "and", "to", "of", "in", "that"},
		Agentives: map[string]string{
			"teach": "teacher",
			"wait":  "waiter",
		},
		Clusters: []Cluster{
			{Name: "MOM", Members: []string{"mom", "mommy", "momma", "mama", "ma", "mother"}},
			{Name: "DAD", Members: []string{"dad", "daddy", "dada", "papa", "pa", "father"}},
			{Name: "GRANDMA", Members: []string{"grandma", "granny", "gramma", "nana", "grandmom",
				"grandmommy", "grandmother", "grandmama"}},
			{Name: "GRANDPA", Members: []string{"grandpa", "granddad", "granddaddy", "gramps",
				"grampa", "grandfather", "grandpapa"}},
			{Name: "AUNT", Members: []string{"aunt", "auntie", "aunty"}},
			{Name: "UNCLE", Members: []string{"uncle"}},
			{Name: "COUSIN", Members: []string{"cousin"}},
			{Name: "BROTHER", Members: []string{"brother"}},
			{Name: "SISTER", Members: []string{"sister", "sissy"}},
			{Name: "SON", Members: []string{"son"}},
			{Name: "DAUGHTER", Members: []string{"daughter"}},
			{Name: "NIECE", Members: []string{"niece"}},
			{Name: "NEPHEW", Members: []string{"nephew"}},
		},
	}
}
