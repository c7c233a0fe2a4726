package config

import "time"

// Default returns the built-in configuration. Every list here can be
// replaced from the YAML file.
func Default() *Config {
	return &Config{
		Port:          "8081",
		LogLevel:      "info",
		SchemaVersion: "3",
		Search: SearchConfig{
			Endpoint: "https://serpapi.com/search.json",
			Queries: []string{
				"latest government job recruitment notification",
				"sarkari naukri recruitment online form apply",
				"public service commission recruitment advertisement",
				"admit card released recruitment exam",
				"recruitment exam result declared merit list",
				"answer key released recruitment exam",
			},
			SiteSuffixes:    []string{"gov.in", "nic.in"},
			Freshness:       "w",
			ResultsPerQuery: 20,
			Country:         "in",
			Language:        "en",
		},
		Sources: SourcesConfig{
			AllowedDomains: []string{
				"upsc.gov.in", "ssc.gov.in", "ssc.nic.in", "ibps.in", "rrbcdg.gov.in",
				"rrbapply.gov.in", "indianrailways.gov.in", "nta.ac.in", "sbi.co.in",
				"rbi.org.in", "opportunities.rbi.org.in", "joinindianarmy.nic.in",
				"joinindiannavy.gov.in", "agnipathvayu.cdac.in", "drdo.gov.in", "isro.gov.in",
				"ncs.gov.in", "employmentnews.gov.in", "uppsc.up.nic.in", "upsssc.gov.in",
				"bpsc.bih.nic.in", "bpsc.bihar.gov.in", "bssc.bihar.gov.in", "mppsc.mp.gov.in",
				"rpsc.rajasthan.gov.in", "hpsc.gov.in", "psc.wb.gov.in", "tnpsc.gov.in",
				"kpsc.kar.nic.in", "opsc.gov.in", "jpsc.gov.in", "ukpsc.net.in", "psc.cg.gov.in",
			},
			GovSuffixes: []string{"gov.in", "nic.in", "gov"},
			CentralDomains: []string{
				"upsc.gov.in", "ssc.gov.in", "ssc.nic.in", "ibps.in", "rrbcdg.gov.in",
				"rrbapply.gov.in", "indianrailways.gov.in", "nta.ac.in", "sbi.co.in",
				"rbi.org.in", "drdo.gov.in", "isro.gov.in", "joinindianarmy.nic.in",
				"joinindiannavy.gov.in", "employmentnews.gov.in",
			},
			CentralKeywords: []string{
				"upsc", "ssc", "staff selection commission", "union public service commission",
				"railway", "rrb", "ibps", "sbi", "rbi", "indian army", "indian navy",
				"air force", "agniveer", "drdo", "isro", "nta", "aiims", "central government",
			},
			RegionalKeywords: []string{
				"psc", "public service commission", "uppsc", "bpsc", "mppsc", "rpsc", "hpsc",
				"tnpsc", "kpsc", "opsc", "jpsc", "ukpsc", "cgpsc", "sssc", "subordinate services",
			},
			StateCodes: []string{
				"up", "bih", "bihar", "mp", "rajasthan", "raj", "hp", "wb", "tn", "kar",
				"kerala", "gujarat", "guj", "mah", "maharashtra", "odisha", "ori", "jharkhand",
				"cg", "uk", "punjab", "haryana", "assam", "telangana", "ap",
			},
		},
		Sweep: SweepConfig{
			MaxCandidates:       12,
			FollowLinks:         2,
			SimilarityThreshold: 0.7,
			RecentWindow:        300,
		},
		Fetch: FetchConfig{
			PageTimeout:     12 * time.Second,
			DocumentTimeout: 20 * time.Second,
			MaxBytes:        8 << 20,
			RatePerSecond:   2,
			UserAgent:       "govjobs-harvester/1.0 (+https://govjobs.example/bot)",
		},
		LLM: LLMConfig{
			Timeout: 60 * time.Second,
		},
		Schedule: ScheduleConfig{
			IntervalHours: 6,
			LockTTL:       2 * time.Hour,
			RunOnStart:    true,
		},
	}
}
