package keywords

// Shared vocabularies. Components that need a tunable list take a *Set in
// their constructor; these are the defaults.
var (
	// Recruitment marks text that is about hiring at all.
	Recruitment = New(
		"recruitment", "vacancy", "vacancies", "notification", "advertisement", "advt",
		"online form", "apply online", "application form", "bharti", "naukri", "jobs",
		"posts", "post", "walk in", "walk-in", "selection", "exam", "examination",
		"upsc", "ssc", "uppsc", "upsssc", "bpsc", "bssc", "mppsc", "rpsc", "hpsc", "tnpsc",
		"kpsc", "opsc", "jpsc", "ukpsc", "cgpsc", "ibps", "rrb", "nta", "psc",
	)

	// NoticeLink marks links and anchors that point at an official notice.
	NoticeLink = New(
		"notification", "notice", "recruitment", "advertisement", "advt", "vacancy",
		"vacancies", "detailed notification", "official notification", "corrigendum",
		"career", "careers", "employment",
	)

	// ApplyLink marks apply / registration links.
	ApplyLink = New(
		"apply", "apply online", "apply now", "registration", "register", "online form",
		"application form", "new registration",
	)

	// NoiseLink marks links that never carry job content.
	NoiseLink = New(
		"login", "log in", "signin", "sign in", "captcha", "share", "sharer", "whatsapp",
		"facebook", "twitter", "redirect", "javascript", "logout", "print",
	)

	// Procurement marks tender pages, which use the same notice vocabulary.
	Procurement = New(
		"tender", "tenders", "procurement", "e procurement", "eprocurement", "bid", "bids",
		"quotation", "rfp", "expression of interest", "eoi", "auction",
	)

	// Qualifications is the eligibility vocabulary used by the fallback extractor.
	Qualifications = New(
		"10th", "12th", "matric", "intermediate", "graduate", "graduation", "post graduate",
		"post graduation", "any degree", "bachelor", "master", "b tech", "btech", "b e",
		"m tech", "diploma", "iti", "mbbs", "bds", "b ed", "bed", "b sc", "bsc", "m sc", "msc",
		"b com", "bcom", "m com", "ca", "cs", "llb", "mba", "phd", "nursing", "gnm", "anm",
		"pharmacy", "d pharma", "b pharma",
	)

	// Posts is the post-title vocabulary used by the fallback extractor.
	Posts = New(
		"officer", "clerk", "constable", "teacher", "lecturer", "professor", "engineer",
		"assistant", "inspector", "sub inspector", "steno", "stenographer", "typist",
		"driver", "nurse", "staff nurse", "pharmacist", "technician", "apprentice",
		"manager", "accountant", "auditor", "analyst", "scientist", "peon", "multi tasking staff",
		"mts", "guard", "forest guard", "patwari", "lekhpal", "agniveer", "sepoy", "trainee",
	)
)
