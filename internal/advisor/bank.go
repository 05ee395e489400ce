package advisor

// bank is the built-in policy rule list, in priority order.
// Keywords must be lowercase; matching is plain substring containment.
var bank = []Rule{
	{
		Keywords: []string{"work", "20", "hours", "campus", "on-campus"},
		Text: "F-1 students may work on campus up to 20 hours per week during the academic year. " +
			"During official school breaks (summer, winter), you may work full-time up to 40 hours.\n\n" +
			"IMPORTANT: Exceeding 20 hrs/week during the semester, even by one hour, is a deportable SEVIS violation.",
		Source: "USCIS F-1 On-Campus Employment Guidelines §214.2(f)(9)",
	},
	{
		Keywords: []string{"opt", "deadline", "miss", "optional practical"},
		Text: "Missing your OPT application deadline means losing your right to work in the US after graduation; " +
			"this cannot be reversed.\n\n" +
			"You must apply no earlier than 90 days before your program end date. USCIS processing takes 3-5 months, " +
			"so apply as early as possible.\n\n" +
			"IMPORTANT: If you miss the OPT window entirely, you lose eligibility for that degree level.",
		Source: "USCIS OPT Guide (M-1438), Section 4",
	},
	{
		Keywords: []string{"address", "report", "move", "moved", "new address"},
		Text: "Yes, F-1 students are legally required to report any US address change to their DSO within 10 days of moving.\n\n" +
			"Your DSO updates this in your SEVIS record. Failure to report is a SEVIS violation even if everything else " +
			"is in compliance.\n\n" +
			"Steps: email your DSO, provide the new address, confirm SEVIS has been updated.",
		Source: "SEVIS Reporting Requirements §214.2(f)(17)(ii)",
	},
	{
		Keywords: []string{"cpt", "curricular practical", "off campus", "off-campus work"},
		Text: "CPT (Curricular Practical Training) allows F-1 students to work off-campus as part of their curriculum, " +
			"but it must be authorized by your DSO BEFORE you start working.\n\n" +
			"IMPORTANT: Working without CPT authorization is unauthorized employment, one of the most serious F-1 " +
			"violations. Also, 12+ months of full-time CPT makes you ineligible for OPT.",
		Source: "USCIS CPT Guidelines §214.2(f)(10)(i)",
	},
	{
		Keywords: []string{"travel", "leave", "trip", "go back", "visit home", "fly"},
		Text: "Before traveling outside the US, verify all three of the following:\n\n" +
			"1. Your visa stamp is still valid for re-entry\n" +
			"2. Your I-20 travel signature is less than 6 months old (12 months if on OPT)\n" +
			"3. Your passport is valid for at least 6 months beyond your return date\n\n" +
			"If any of these are expired, you may be denied re-entry even if your status is valid.",
		Source: "CBP F-1 Re-entry Requirements",
	},
	{
		Keywords: []string{"full time", "full-time", "drop", "part time", "credits", "enrollment"},
		Text: "F-1 students must maintain full-time enrollment during the academic year: minimum 12 credits for " +
			"undergraduates, 9 credits for graduate students.\n\n" +
			"Dropping below full-time without prior DSO authorization is a SEVIS violation.\n\n" +
			"Authorized exceptions exist for the final semester, medical reasons, or academic difficulty, but ALL " +
			"must be approved by your DSO in writing BEFORE dropping.",
		Source: "INA §101(a)(15)(F), USCIS §214.2(f)(6)",
	},
	{
		Keywords: []string{"sevis", "terminated", "termination", "out of status"},
		Text: "A SEVIS termination means your F-1 status has been revoked. You have two options:\n\n" +
			"1. Apply for reinstatement within 5 months (if eligible)\n" +
			"2. Leave the US and re-enter on a new visa/I-20\n\n" +
			"IMPORTANT: Do NOT continue studying or working after a SEVIS termination; it compounds the violation. " +
			"Contact your DSO immediately.",
		Source: "USCIS Reinstatement Guidelines §214.2(f)(16)",
	},
	{
		Keywords: []string{"transfer", "new school", "change university", "switch school"},
		Text: "To transfer schools, your SEVIS record must be transferred from your current institution to the new " +
			"one BEFORE you begin at the new school.\n\n" +
			"You have a 15-day window after your program end date at the original school to begin the transfer process.\n\n" +
			"Steps: notify your current DSO, get a transfer release, then the new school's DSO issues a new I-20.",
		Source: "SEVIS Transfer Procedures §214.2(f)(8)",
	},
	{
		Keywords: []string{"ssn", "social security", "social security number"},
		Text: "You need an SSN to work on-campus, file taxes, open a US bank account, and complete I-9 employment " +
			"verification forms.\n\n" +
			"To apply: get a DSO letter confirming employment eligibility, wait 10 days after arriving in the US, " +
			"then visit your local Social Security Administration office with your passport, visa, I-20, and DSO letter.",
		Source: "SSA Publication No. 05-10096",
	},
	{
		Keywords: []string{"tax", "taxes", "file", "8843", "irs"},
		Text: "ALL international students must file a US federal tax return, even with zero income. At minimum, you " +
			"must file Form 8843 every year you are in the US.\n\n" +
			"If you had income (on-campus job, stipend, scholarship), additional forms are required. The filing " +
			"deadline is April 15.\n\n" +
			"Failure to file can affect future visa applications and OPT eligibility.",
		Source: "IRS Publication 519 — US Tax Guide for Aliens",
	},
	{
		Keywords: []string{"health", "insurance", "waive", "medical"},
		Text: "Most universities require international students to be enrolled in the school's health insurance plan " +
			"unless you can demonstrate comparable alternative coverage.\n\n" +
			"Enrollment windows are typically only open for 2-3 weeks at the start of each semester; missing the " +
			"window means you are automatically enrolled and charged.\n\n" +
			"A single US emergency room visit can cost $5,000-$50,000 without insurance.",
		Source: "Your university's ISO office and health services portal",
	},
	{
		Keywords: []string{"stem", "stem opt", "24 month", "extension"},
		Text: "STEM OPT extends your post-completion OPT by 24 months if you have a qualifying STEM degree and a " +
			"qualifying employer enrolled in E-Verify.\n\n" +
			"You must apply 90 days before your standard OPT expires. Your employer must submit a formal training " +
			"plan (Form I-983).\n\n" +
			"You cannot apply after your OPT expires; apply early.",
		Source: "USCIS STEM OPT Guidelines, 8 CFR 214.2(f)(10)(ii)(C)",
	},
	{
		Keywords: []string{"grace period", "after graduation", "program end", "60 days"},
		Text: "After your program end date, F-1 students have a 60-day grace period to either depart the US, begin " +
			"OPT, or transfer to another program.\n\n" +
			"You CANNOT work during the grace period unless you have an active EAD card for OPT.\n\n" +
			"The grace period is not extendable. Plan your next steps before your program ends.",
		Source: "USCIS F-1 Grace Period §214.2(f)(5)(iv)",
	},
	{
		Keywords: []string{"dso", "designated school official", "international office", "iso"},
		Text: "Your DSO (Designated School Official) is your legal point of contact for all SEVIS-related actions; " +
			"they are the only person authorized to update your visa record.\n\n" +
			"You should know their name, email, phone number, and office hours.\n\n" +
			"Contact your DSO immediately for enrollment changes, travel, OPT/CPT authorization, address updates, " +
			"and any compliance concerns. Find them at your university's International Student Office (ISO).",
		Source: "Your university's International Student Office",
	},
	{
		Keywords: []string{"h1b", "h-1b", "cap gap", "after opt"},
		Text: "If your H-1B petition is approved and you are on OPT, the cap-gap rule automatically extends your OPT " +
			"and F-1 status until October 1 (the H-1B start date).\n\n" +
			"Traveling outside the US during the cap-gap period is extremely risky; many students are denied " +
			"re-entry. Consult your DSO before any travel during this window.",
		Source: "USCIS Cap-Gap Extension Guidelines",
	},
}

// fallbackAnswer is returned when no rule matches.
var fallbackAnswer = Answer{
	Text: "That's a great question. Based on current F-1/J-1 policy, I'd recommend confirming this directly with " +
		"your DSO, as the answer may depend on your specific situation and university.\n\n" +
		"For authoritative guidance, visit uscis.gov or contact your International Student Office.",
	Sources: []string{"USCIS General F-1 Regulations §214.2(f)"},
}
