package classifier

// Lists holds the pattern and domain data the classifier scores against.
// Instances are treated as immutable once passed to New, so multiple
// classifiers with different tunings can run side by side.
type Lists struct {
	// NewsletterDomains are sending domains of known newsletter platforms
	NewsletterDomains []string

	// SenderNamePatterns match newsletter-style sender display names
	SenderNamePatterns []string

	// SubjectPatterns match edition numbering and cadence wording
	SubjectPatterns []string

	// PromotionalSubjectPatterns match discount, urgency, transactional
	// and social-notification wording
	PromotionalSubjectPatterns []string

	// PromotionalContentPatterns match call-to-action and price wording
	// in the body
	PromotionalContentPatterns []string

	// PromotionalSenderTokens are local-part tokens of transactional and
	// marketing senders
	PromotionalSenderTokens []string

	// QualitySubjectPatterns match analytical, editorial vocabulary
	QualitySubjectPatterns []string

	// BlockedDomains force a maximal promotional score
	BlockedDomains []string

	// QualityDomains are curated high-quality publishers
	QualityDomains []string
}

// DefaultLists returns the built-in pattern set
func DefaultLists() Lists {
	return Lists{
		NewsletterDomains: []string{
			"substack.com", "beehiiv.com", "mailchimp.com",
			"convertkit.com", "buttondown.email", "revue.co",
			"ghost.io", "campaignmonitor.com", "mailerlite.com",
			"sendinblue.com", "getrevue.co", "emailoctopus.com",
			"benchmarkemail.com", "moosend.com", "drip.com",
			"klaviyo.com", "constantcontact.com", "hubspot.com",
			"medium.com", "linkedin.com", "morningbrew.com",
			"axios.com", "thenewsette.com", "thehustle.co",
		},
		SenderNamePatterns: []string{
			`newsletter`, `digest`, `weekly`, `daily`,
			`updates?`, `bulletin`, `dispatch`, `brief`,
			`roundup`, `recap`, `summary`, `edition`,
			`insider`, `report`, `review`, `bytes`,
		},
		SubjectPatterns: []string{
			`issue\s*#?\d+`, `edition\s*#?\d+`, `vol\.?\s*\d+`,
			`#\d+\s*[-:—]`, `weekly`, `daily`, `monthly`,
			`digest`, `roundup`, `newsletter`, `this\s+week`,
			`top\s+\d+`, `best\s+of`, `highlights`,
		},
		PromotionalSubjectPatterns: []string{
			`\d+%\s*off`, `save\s+\$?\d+`, `discount`, `sale\b`,
			`deal\b`, `offer\b`, `promo\b`, `coupon`, `voucher`,
			`limited\s+time`, `expires?\b`, `ends\s+(today|soon|tonight)`,
			`last\s+chance`, `final\s+(hours?|days?)`, `hurry`,
			`don'?t\s+miss`, `act\s+(now|fast)`, `today\s+only`,
			`flash\s+sale`, `clearance`, `free\s+shipping`,
			`exclusive\s+(offer|deal|access)`, `special\s+(offer|deal|price)`,
			`order\s+(confirmed?|shipped|delivered)`,
			`shipping\s+(update|confirmation)`, `tracking`,
			`your\s+(order|package|delivery)`, `invoice`,
			`receipt`, `payment\s+(received|confirmed)`,
			`verify\s+(your|email)`, `confirm\s+(your|email)`,
			`password\s+(reset|changed)`, `account\s+(update|alert)`,
			`security\s+(alert|notice)`, `login\s+(alert|notification)`,
			`(new\s+)?(follower|like|comment|mention|reply)`,
			`tagged\s+you`, `connection\s+request`, `friend\s+request`,
			`reminder:`, `meeting\s+(invite|reminder|update)`,
			`survey`, `feedback`, `review\s+us`, `rate\s+us`,
			`we\s+miss\s+you`, `come\s+back`, `abandoned\s+cart`,
		},
		PromotionalContentPatterns: []string{
			`shop\s+now`, `buy\s+now`, `order\s+now`,
			`click\s+here`, `sign\s+up\s+now`,
			`\$\d+(\.\d{2})?`, `£\d+`, `€\d+`,
			`limited\s+(time|stock|availability)`,
			`while\s+supplies\s+last`, `selling\s+fast`,
		},
		PromotionalSenderTokens: []string{
			"noreply", "no-reply", "donotreply", "do-not-reply",
			"notifications", "notification", "alerts", "alert",
			"mailer", "marketing", "promo", "promotions",
			"deals", "offers", "sales", "store", "shop",
			"orders", "order", "shipping", "delivery",
			"support", "help", "info", "billing", "invoice",
		},
		QualitySubjectPatterns: []string{
			`analysis`, `insights?`, `deep\s+dive`, `breakdown`,
			`explained`, `how\s+to`, `why\b`, `guide\s+to`,
			`lessons?\s+(from|learned)`, `takeaways?`,
			`industry`, `market`, `trends?`, `forecast`,
			`report\b`, `research`, `study`, `findings`,
			`startup`, `venture`, `funding`, `investment`,
			`technology`, `innovation`, `future\s+of`,
			`opinion`, `perspective`, `essay`, `commentary`,
			`interview`, `conversation\s+with`,
			`reading\s+list`, `must\s+read`, `curated`,
		},
		BlockedDomains: []string{
			"amazon.com", "ebay.com", "walmart.com", "target.com",
			"doordash.com", "ubereats.com", "grubhub.com",
			"booking.com", "expedia.com", "airbnb.com",
			"uber.com", "lyft.com",
			"facebookmail.com", "twitter.com", "x.com",
			"instagram.com", "tiktok.com", "pinterest.com",
			"netflix.com", "spotify.com", "youtube.com",
			"paypal.com", "venmo.com", "cashapp.com",
		},
		QualityDomains: []string{
			"substack.com", "beehiiv.com", "buttondown.email",
			"ghost.io", "morningbrew.com", "axios.com", "thehustle.co",
		},
	}
}
