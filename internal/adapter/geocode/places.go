package geocode

// place is a named coordinate. Lookup order matters: substring and
// word-overlap matching return the first qualifying entry.
type place struct {
	name     string
	lat, lon float64
}

// indiaCenter is used when nothing else matches.
var indiaCenter = place{name: "india", lat: 20.5937, lon: 78.9629}

var places = []place{
	// Major cities.
	{"mumbai", 19.0760, 72.8777},
	{"delhi", 28.6139, 77.2090},
	{"new delhi", 28.6139, 77.2090},
	{"bangalore", 12.9716, 77.5946},
	{"bengaluru", 12.9716, 77.5946},
	{"chennai", 13.0827, 80.2707},
	{"kolkata", 22.5726, 88.3639},
	{"hyderabad", 17.3850, 78.4867},
	{"pune", 18.5204, 73.8567},
	{"ahmedabad", 23.0225, 72.5714},
	{"jaipur", 26.9124, 75.7873},
	{"surat", 21.1702, 72.8311},
	{"lucknow", 26.8467, 80.9462},
	{"kanpur", 26.4499, 80.3319},
	{"nagpur", 21.1458, 79.0882},
	{"indore", 22.7196, 75.8577},
	{"thane", 19.2183, 72.9781},
	{"bhopal", 23.2599, 77.4126},
	{"visakhapatnam", 17.6868, 83.2185},
	{"pimpri chinchwad", 18.6298, 73.7997},

	// Coastal cities.
	{"kochi", 9.9312, 76.2673},
	{"cochin", 9.9312, 76.2673},
	{"goa", 15.2993, 74.1240},
	{"panaji", 15.4989, 73.8278},
	{"mangalore", 12.9141, 74.8560},
	{"calicut", 11.2588, 75.7804},
	{"kozhikode", 11.2588, 75.7804},
	{"trivandrum", 8.5241, 76.9366},
	{"thiruvananthapuram", 8.5241, 76.9366},
	{"pondicherry", 11.9416, 79.8083},
	{"puducherry", 11.9416, 79.8083},
	{"port blair", 11.6234, 92.7265},
	{"daman", 20.3974, 72.8328},
	{"diu", 20.7144, 70.9876},
	{"karwar", 14.7951, 74.1240},
	{"udupi", 13.3409, 74.7421},
	{"kannur", 11.8745, 75.3704},
	{"alappuzha", 9.4981, 76.3388},
	{"kollam", 8.8932, 76.6141},
	{"tuticorin", 8.7642, 78.1348},
	{"nagapattinam", 10.7905, 79.8448},
	{"cuddalore", 11.7480, 79.7714},
	{"mahabalipuram", 12.6208, 80.1982},
	{"rameswaram", 9.2876, 79.3129},
	{"dwarka", 22.2394, 68.9678},
	{"somnath", 20.8880, 70.4017},
	{"porbandar", 21.6417, 69.6293},
	{"bhavnagar", 21.7645, 72.1519},
	{"veraval", 20.9077, 70.3660},

	// Other regional centres.
	{"navi mumbai", 19.0330, 73.0297},
	{"gurgaon", 28.4595, 77.0266},
	{"gurugram", 28.4595, 77.0266},
	{"noida", 28.5355, 77.3910},
	{"faridabad", 28.4089, 77.3178},
	{"ghaziabad", 28.6692, 77.4538},
	{"gandhinagar", 23.2156, 72.6369},
	{"raipur", 21.2514, 81.6296},
	{"ranchi", 23.3441, 85.3096},
	{"bhubaneswar", 20.2961, 85.8245},
	{"patna", 25.5941, 85.1376},
	{"chandigarh", 30.7333, 76.7794},
	{"shimla", 31.1048, 77.1734},
	{"dehradun", 30.3165, 78.0322},
}

var states = []place{
	{"maharashtra", 19.7515, 75.7139},
	{"karnataka", 15.3173, 75.7139},
	{"tamil nadu", 11.1271, 78.6569},
	{"kerala", 10.8505, 76.2711},
	{"andhra pradesh", 15.9129, 79.7400},
	{"telangana", 18.1124, 79.0193},
	{"gujarat", 23.0225, 72.5714},
	{"rajasthan", 27.0238, 74.2179},
	{"madhya pradesh", 22.9734, 78.6569},
	{"uttar pradesh", 26.8467, 80.9462},
	{"bihar", 25.0961, 85.3131},
	{"west bengal", 22.9868, 87.8550},
	{"odisha", 20.9517, 85.0985},
	{"punjab", 31.1471, 75.3412},
	{"haryana", 29.0588, 76.0856},
	{"himachal pradesh", 31.1048, 77.1734},
	{"uttarakhand", 30.0668, 79.0193},
	{"jharkhand", 23.6102, 85.2799},
	{"chhattisgarh", 21.2787, 81.8661},
	{"assam", 26.2006, 92.9376},
	{"goa", 15.2993, 74.1240},
}
