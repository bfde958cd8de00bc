package service

import (
	"strings"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

// Country is one ISO 3166-1 entry together with the default grading
// system used for climbs in that country
type Country struct {
	Alpha2       string
	Alpha3       string
	Name         string
	GradeContext string
	LngLat       *models.Point
}

// ResolveCountry accepts an alpha-2 or alpha-3 ISO code, case
// insensitive, and returns the canonical entry
func ResolveCountry(code string) (Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var alpha3 string
	switch len(code) {
	case 2:
		alpha3 = alpha3ByAlpha2[code]
	case 3:
		if _, ok := countries[code]; ok {
			alpha3 = code
		}
	}
	if alpha3 == "" {
		return Country{}, models.ErrInvalidCountryCode
	}

	c := countries[alpha3]
	out := Country{
		Alpha2:       c.alpha2,
		Alpha3:       alpha3,
		Name:         c.name,
		GradeContext: gradeContexts[alpha3],
	}
	if out.GradeContext == "" {
		// countries without an explicit entry grade on the US system
		out.GradeContext = "US"
	}
	if ll, ok := countryLngLat[alpha3]; ok {
		out.LngLat = &models.Point{Lng: ll[0], Lat: ll[1]}
	}

	return out, nil
}

type countryEntry struct {
	alpha2 string
	name   string
}

var alpha3ByAlpha2 = func() map[string]string {
	m := make(map[string]string, len(countries))
	for a3, c := range countries {
		m[c.alpha2] = a3
	}
	return m
}()

// gradeContexts lists the countries whose default grading system is not
// the US one
var gradeContexts = map[string]string{
	"AND": "FR", "ATF": "FR", "AUS": "AU", "AUT": "UIAA", "AZE": "UIAA",
	"BEL": "FR", "BGR": "UIAA", "BIH": "FR", "BLR": "UIAA", "BRA": "BRZ",
	"BWA": "SA", "CHE": "FR", "CUB": "FR", "CZE": "UIAA", "DEU": "UIAA",
	"DNK": "UIAA", "EGY": "FR", "ESP": "FR", "EST": "FR", "FIN": "FIN",
	"FRA": "FR", "GBR": "UK", "GRC": "FR", "GUF": "FR", "HKG": "HK",
	"HRV": "FR", "HUN": "UIAA", "IOT": "UK", "IRL": "UK", "ITA": "FR",
	"JEY": "UK", "JOR": "FR", "KEN": "UK", "KGZ": "FR", "LAO": "FR",
	"LIE": "FR", "LSO": "SA", "LTU": "FR", "LUX": "FR", "LVA": "FR",
	"MAR": "FR", "MCO": "FR", "MDA": "FR", "MDG": "FR", "MKD": "FR",
	"MLT": "FR", "MNE": "UIAA", "MYS": "FR", "NAM": "SA", "NCL": "FR",
	"NLD": "FR", "NOR": "NWG", "NZL": "AU", "PER": "FR", "PNG": "AU",
	"POL": "POL", "PRT": "FR", "PYF": "FR", "ROU": "FR", "RUS": "FR",
	"SGP": "FR", "SRB": "FR", "SVK": "UIAA", "SVN": "FR", "SWE": "SWE",
	"THA": "FR", "TON": "AU", "TUN": "FR", "TUR": "FR", "UGA": "SA",
	"UKR": "FR", "VNM": "FR", "ZAF": "SA",
}

// countryLngLat holds representative coordinates for the countries that
// commonly appear in the database. Countries without an entry are
// created without a location.
var countryLngLat = map[string][2]float64{
	"AUS": {134.4910001, -25.7349684},
	"AUT": {14.1264761, 47.5939165},
	"BEL": {4.6667145, 50.6407351},
	"BGR": {25.4856617, 42.7249925},
	"BRA": {-53.1805017, -10.8126797},
	"CAN": {-107.9917071, 61.0666922},
	"CHE": {8.2319736, 46.7985624},
	"CHL": {-71.3187697, -31.7613365},
	"CHN": {104.999927, 35.000074},
	"CZE": {15.3381061, 49.7439047},
	"DEU": {10.4478313, 51.1638175},
	"DNK": {10.3333283, 55.670249},
	"ESP": {-4.8379791, 39.3260685},
	"FIN": {25.9209164, 63.2467777},
	"FRA": {1.8883335, 46.603354},
	"GBR": {-3.2765753, 54.7023545},
	"GRC": {21.9877132, 38.9953683},
	"HRV": {16.6031442, 45.5643442},
	"HUN": {19.5060937, 47.1817585},
	"IND": {78.6677428, 22.3511148},
	"IRL": {-7.9794599, 52.865196},
	"ISL": {-18.1059013, 64.9841821},
	"ITA": {12.674297, 42.6384261},
	"JPN": {139.2394179, 36.5748441},
	"KOR": {127.6961188, 36.638392},
	"MEX": {-102.0077097, 23.6585116},
	"NLD": {5.6343227, 52.2434979},
	"NOR": {9.0999715, 60.5000209},
	"NZL": {172.8344077, -41.5000831},
	"POL": {19.134422, 52.215933},
	"PRT": {-7.8896263, 40.0332629},
	"ROU": {24.6859225, 45.9852129},
	"RUS": {97.7453061, 64.6863136},
	"SVK": {19.4528646, 48.7411522},
	"SVN": {14.8823912, 46.1199444},
	"SWE": {14.5208584, 59.6749712},
	"THA": {100.83273, 14.8971921},
	"TUR": {34.9249653, 38.9597594},
	"USA": {-100.4458825, 39.7837304},
	"ZAF": {24.991639, -28.8166236},
}

// countries is the ISO 3166-1 registry, alpha-3 keyed
var countries = map[string]countryEntry{
	"ABW": {"AW", "Aruba"},
	"AFG": {"AF", "Afghanistan"},
	"AGO": {"AO", "Angola"},
	"AIA": {"AI", "Anguilla"},
	"ALA": {"AX", "Aland Islands"},
	"ALB": {"AL", "Albania"},
	"AND": {"AD", "Andorra"},
	"ARE": {"AE", "United Arab Emirates"},
	"ARG": {"AR", "Argentina"},
	"ARM": {"AM", "Armenia"},
	"ASM": {"AS", "American Samoa"},
	"ATA": {"AQ", "Antarctica"},
	"ATF": {"TF", "French Southern Territories"},
	"ATG": {"AG", "Antigua and Barbuda"},
	"AUS": {"AU", "Australia"},
	"AUT": {"AT", "Austria"},
	"AZE": {"AZ", "Azerbaijan"},
	"BDI": {"BI", "Burundi"},
	"BEL": {"BE", "Belgium"},
	"BEN": {"BJ", "Benin"},
	"BES": {"BQ", "Bonaire, Sint Eustatius and Saba"},
	"BFA": {"BF", "Burkina Faso"},
	"BGD": {"BD", "Bangladesh"},
	"BGR": {"BG", "Bulgaria"},
	"BHR": {"BH", "Bahrain"},
	"BHS": {"BS", "Bahamas"},
	"BIH": {"BA", "Bosnia and Herzegovina"},
	"BLM": {"BL", "Saint Barthelemy"},
	"BLR": {"BY", "Belarus"},
	"BLZ": {"BZ", "Belize"},
	"BMU": {"BM", "Bermuda"},
	"BOL": {"BO", "Bolivia"},
	"BRA": {"BR", "Brazil"},
	"BRB": {"BB", "Barbados"},
	"BRN": {"BN", "Brunei Darussalam"},
	"BTN": {"BT", "Bhutan"},
	"BVT": {"BV", "Bouvet Island"},
	"BWA": {"BW", "Botswana"},
	"CAF": {"CF", "Central African Republic"},
	"CAN": {"CA", "Canada"},
	"CCK": {"CC", "Cocos (Keeling) Islands"},
	"CHE": {"CH", "Switzerland"},
	"CHL": {"CL", "Chile"},
	"CHN": {"CN", "China"},
	"CIV": {"CI", "Cote d'Ivoire"},
	"CMR": {"CM", "Cameroon"},
	"COD": {"CD", "Congo, Democratic Republic of the"},
	"COG": {"CG", "Congo"},
	"COK": {"CK", "Cook Islands"},
	"COL": {"CO", "Colombia"},
	"COM": {"KM", "Comoros"},
	"CPV": {"CV", "Cabo Verde"},
	"CRI": {"CR", "Costa Rica"},
	"CUB": {"CU", "Cuba"},
	"CUW": {"CW", "Curacao"},
	"CXR": {"CX", "Christmas Island"},
	"CYM": {"KY", "Cayman Islands"},
	"CYP": {"CY", "Cyprus"},
	"CZE": {"CZ", "Czechia"},
	"DEU": {"DE", "Germany"},
	"DJI": {"DJ", "Djibouti"},
	"DMA": {"DM", "Dominica"},
	"DNK": {"DK", "Denmark"},
	"DOM": {"DO", "Dominican Republic"},
	"DZA": {"DZ", "Algeria"},
	"ECU": {"EC", "Ecuador"},
	"EGY": {"EG", "Egypt"},
	"ERI": {"ER", "Eritrea"},
	"ESH": {"EH", "Western Sahara"},
	"ESP": {"ES", "Spain"},
	"EST": {"EE", "Estonia"},
	"ETH": {"ET", "Ethiopia"},
	"FIN": {"FI", "Finland"},
	"FJI": {"FJ", "Fiji"},
	"FLK": {"FK", "Falkland Islands"},
	"FRA": {"FR", "France"},
	"FRO": {"FO", "Faroe Islands"},
	"FSM": {"FM", "Micronesia"},
	"GAB": {"GA", "Gabon"},
	"GBR": {"GB", "United Kingdom"},
	"GEO": {"GE", "Georgia"},
	"GGY": {"GG", "Guernsey"},
	"GHA": {"GH", "Ghana"},
	"GIB": {"GI", "Gibraltar"},
	"GIN": {"GN", "Guinea"},
	"GLP": {"GP", "Guadeloupe"},
	"GMB": {"GM", "Gambia"},
	"GNB": {"GW", "Guinea-Bissau"},
	"GNQ": {"GQ", "Equatorial Guinea"},
	"GRC": {"GR", "Greece"},
	"GRD": {"GD", "Grenada"},
	"GRL": {"GL", "Greenland"},
	"GTM": {"GT", "Guatemala"},
	"GUF": {"GF", "French Guiana"},
	"GUM": {"GU", "Guam"},
	"GUY": {"GY", "Guyana"},
	"HKG": {"HK", "Hong Kong"},
	"HMD": {"HM", "Heard Island and McDonald Islands"},
	"HND": {"HN", "Honduras"},
	"HRV": {"HR", "Croatia"},
	"HTI": {"HT", "Haiti"},
	"HUN": {"HU", "Hungary"},
	"IDN": {"ID", "Indonesia"},
	"IMN": {"IM", "Isle of Man"},
	"IND": {"IN", "India"},
	"IOT": {"IO", "British Indian Ocean Territory"},
	"IRL": {"IE", "Ireland"},
	"IRN": {"IR", "Iran"},
	"IRQ": {"IQ", "Iraq"},
	"ISL": {"IS", "Iceland"},
	"ISR": {"IL", "Israel"},
	"ITA": {"IT", "Italy"},
	"JAM": {"JM", "Jamaica"},
	"JEY": {"JE", "Jersey"},
	"JOR": {"JO", "Jordan"},
	"JPN": {"JP", "Japan"},
	"KAZ": {"KZ", "Kazakhstan"},
	"KEN": {"KE", "Kenya"},
	"KGZ": {"KG", "Kyrgyzstan"},
	"KHM": {"KH", "Cambodia"},
	"KIR": {"KI", "Kiribati"},
	"KNA": {"KN", "Saint Kitts and Nevis"},
	"KOR": {"KR", "Korea, Republic of"},
	"KWT": {"KW", "Kuwait"},
	"LAO": {"LA", "Lao People's Democratic Republic"},
	"LBN": {"LB", "Lebanon"},
	"LBR": {"LR", "Liberia"},
	"LBY": {"LY", "Libya"},
	"LCA": {"LC", "Saint Lucia"},
	"LIE": {"LI", "Liechtenstein"},
	"LKA": {"LK", "Sri Lanka"},
	"LSO": {"LS", "Lesotho"},
	"LTU": {"LT", "Lithuania"},
	"LUX": {"LU", "Luxembourg"},
	"LVA": {"LV", "Latvia"},
	"MAC": {"MO", "Macao"},
	"MAF": {"MF", "Saint Martin (French part)"},
	"MAR": {"MA", "Morocco"},
	"MCO": {"MC", "Monaco"},
	"MDA": {"MD", "Moldova"},
	"MDG": {"MG", "Madagascar"},
	"MDV": {"MV", "Maldives"},
	"MEX": {"MX", "Mexico"},
	"MHL": {"MH", "Marshall Islands"},
	"MKD": {"MK", "North Macedonia"},
	"MLI": {"ML", "Mali"},
	"MLT": {"MT", "Malta"},
	"MMR": {"MM", "Myanmar"},
	"MNE": {"ME", "Montenegro"},
	"MNG": {"MN", "Mongolia"},
	"MNP": {"MP", "Northern Mariana Islands"},
	"MOZ": {"MZ", "Mozambique"},
	"MRT": {"MR", "Mauritania"},
	"MSR": {"MS", "Montserrat"},
	"MTQ": {"MQ", "Martinique"},
	"MUS": {"MU", "Mauritius"},
	"MWI": {"MW", "Malawi"},
	"MYS": {"MY", "Malaysia"},
	"MYT": {"YT", "Mayotte"},
	"NAM": {"NA", "Namibia"},
	"NCL": {"NC", "New Caledonia"},
	"NER": {"NE", "Niger"},
	"NFK": {"NF", "Norfolk Island"},
	"NGA": {"NG", "Nigeria"},
	"NIC": {"NI", "Nicaragua"},
	"NIU": {"NU", "Niue"},
	"NLD": {"NL", "Netherlands"},
	"NOR": {"NO", "Norway"},
	"NPL": {"NP", "Nepal"},
	"NRU": {"NR", "Nauru"},
	"NZL": {"NZ", "New Zealand"},
	"OMN": {"OM", "Oman"},
	"PAK": {"PK", "Pakistan"},
	"PAN": {"PA", "Panama"},
	"PCN": {"PN", "Pitcairn"},
	"PER": {"PE", "Peru"},
	"PHL": {"PH", "Philippines"},
	"PLW": {"PW", "Palau"},
	"PNG": {"PG", "Papua New Guinea"},
	"POL": {"PL", "Poland"},
	"PRI": {"PR", "Puerto Rico"},
	"PRK": {"KP", "Korea, Democratic People's Republic of"},
	"PRT": {"PT", "Portugal"},
	"PRY": {"PY", "Paraguay"},
	"PSE": {"PS", "Palestine, State of"},
	"PYF": {"PF", "French Polynesia"},
	"QAT": {"QA", "Qatar"},
	"REU": {"RE", "Reunion"},
	"ROU": {"RO", "Romania"},
	"RUS": {"RU", "Russian Federation"},
	"RWA": {"RW", "Rwanda"},
	"SAU": {"SA", "Saudi Arabia"},
	"SDN": {"SD", "Sudan"},
	"SEN": {"SN", "Senegal"},
	"SGP": {"SG", "Singapore"},
	"SGS": {"GS", "South Georgia and the South Sandwich Islands"},
	"SHN": {"SH", "Saint Helena, Ascension and Tristan da Cunha"},
	"SJM": {"SJ", "Svalbard and Jan Mayen"},
	"SLB": {"SB", "Solomon Islands"},
	"SLE": {"SL", "Sierra Leone"},
	"SLV": {"SV", "El Salvador"},
	"SMR": {"SM", "San Marino"},
	"SOM": {"SO", "Somalia"},
	"SPM": {"PM", "Saint Pierre and Miquelon"},
	"SRB": {"RS", "Serbia"},
	"SSD": {"SS", "South Sudan"},
	"STP": {"ST", "Sao Tome and Principe"},
	"SUR": {"SR", "Suriname"},
	"SVK": {"SK", "Slovakia"},
	"SVN": {"SI", "Slovenia"},
	"SWE": {"SE", "Sweden"},
	"SWZ": {"SZ", "Eswatini"},
	"SXM": {"SX", "Sint Maarten (Dutch part)"},
	"SYC": {"SC", "Seychelles"},
	"SYR": {"SY", "Syrian Arab Republic"},
	"TCA": {"TC", "Turks and Caicos Islands"},
	"TCD": {"TD", "Chad"},
	"TGO": {"TG", "Togo"},
	"THA": {"TH", "Thailand"},
	"TJK": {"TJ", "Tajikistan"},
	"TKL": {"TK", "Tokelau"},
	"TKM": {"TM", "Turkmenistan"},
	"TLS": {"TL", "Timor-Leste"},
	"TON": {"TO", "Tonga"},
	"TTO": {"TT", "Trinidad and Tobago"},
	"TUN": {"TN", "Tunisia"},
	"TUR": {"TR", "Turkiye"},
	"TUV": {"TV", "Tuvalu"},
	"TWN": {"TW", "Taiwan"},
	"TZA": {"TZ", "Tanzania"},
	"UGA": {"UG", "Uganda"},
	"UKR": {"UA", "Ukraine"},
	"UMI": {"UM", "United States Minor Outlying Islands"},
	"URY": {"UY", "Uruguay"},
	"USA": {"US", "United States of America"},
	"UZB": {"UZ", "Uzbekistan"},
	"VAT": {"VA", "Holy See"},
	"VCT": {"VC", "Saint Vincent and the Grenadines"},
	"VEN": {"VE", "Venezuela"},
	"VGB": {"VG", "Virgin Islands (British)"},
	"VIR": {"VI", "Virgin Islands (U.S.)"},
	"VNM": {"VN", "Viet Nam"},
	"VUT": {"VU", "Vanuatu"},
	"WLF": {"WF", "Wallis and Futuna"},
	"WSM": {"WS", "Samoa"},
	"YEM": {"YE", "Yemen"},
	"ZAF": {"ZA", "South Africa"},
	"ZMB": {"ZM", "Zambia"},
	"ZWE": {"ZW", "Zimbabwe"},
}
