package entities

import (
	"strings"

	"gezgi_admin/internal/form"
)

var (
	refCities        = RefSpec{Name: "cities", Key: "cities", Label: "city"}
	refLanguages     = RefSpec{Name: "languages", Key: "languages", Label: "language"}
	refNationalities = RefSpec{Name: "nationalities", Key: "nationalities", Label: "nationality"}
	refGenders       = RefSpec{Name: "genders", Key: "genders", Label: "gender"}
	refCurrencies    = RefSpec{Name: "currencies", Key: "currencies", Label: "currency"}
	refPayments      = RefSpec{Name: "paymentMethods", Key: "paymentMethods", Label: "method"}
	refAirports      = RefSpec{Name: "airports", Key: "airports", Label: "airport"}
	refTours         = RefSpec{Name: "tours", Key: "tours", Label: "tour"}
	refGuides        = RefSpec{Name: "guides", Key: "guides", Label: "name"}
	refHousings      = RefSpec{Name: "housings", Key: "housings", Label: "housing"}
	refVehicles      = RefSpec{Name: "vehicles", Key: "vehicles", Label: "company"}
	refRestaurants   = RefSpec{Name: "restaurants", Key: "restaurants", Label: "restaurant"}
)

func text(name, label string, min int, msg string) form.Field {
	f := form.Field{Name: name, Label: label, Kind: form.Text}
	if min > 0 {
		f.Rules = []form.Rule{form.Min(min, msg)}
	}
	return f
}

func date(name, label, msg string) form.Field {
	return form.Field{Name: name, Label: label, Kind: form.Date, Rules: []form.Rule{form.Min(10, msg)}}
}

func ref(name, label string, rs RefSpec, display string) form.Field {
	return form.Field{Name: name, Label: label, Kind: form.Select, Ref: rs.Name, Display: display}
}

func email() form.Field {
	return form.Field{Name: "email", Label: "Email", Kind: form.Email, Rules: []form.Rule{
		form.EmailRule("Invalid email address"),
		form.Min(5, "Email must be 8 or more characters long"),
	}}
}

func guideSchema(create bool) form.Schema {
	pw := form.Field{Name: "password", Label: "New Password", Kind: form.Password, Secret: true,
		Rules: []form.Rule{form.Min(8, "Password must be at least 8 characters")}}
	again := form.Field{Name: "rePassword", Label: "Password Again", Kind: form.Password, Secret: true,
		Rules: []form.Rule{form.Min(8, "Password must be at least 8 characters")}}
	if create {
		pw.Label = "Password"
	} else {
		// a blank pair on edit keeps the current password
		pw.Optional, again.Optional = true, true
	}
	return form.Schema{
		Fields: []form.Field{
			text("name", "Name", 2, "Name must be at least 2 characters."),
			text("username", "Username", 2, "Username must be at least 2 characters."),
			ref("languageId", "Language", refLanguages, "language"),
			email(),
			{Name: "phone", Label: "Phone", Kind: form.Tel},
			text("passportNo", "Passport No", 6, "Passport number must be at least 6 characters."),
			ref("nationalityId", "Nationality", refNationalities, "nationality"),
			date("birth", "Birth", "Birth date must be at least 10 characters."),
			text("intimate", "Intimate", 2, "Intimate must be at least 2 characters."),
			text("intimacy", "Intimacy", 2, "Intimacy must be at least 2 characters."),
			{Name: "intimatePhone", Label: "Intimate Phone", Kind: form.Tel},
			pw,
			again,
			{Name: "isAdmin", Label: "Manager", Kind: form.Checkbox},
		},
		Refinements: []form.Refinement{form.Equal("password", "rePassword", "Passwords do not match")},
	}
}

var tourSchema = form.Schema{Fields: []form.Field{
	text("tour", "Tour", 2, "Tour must be at least 2 characters."),
	{Name: "cityId", Label: "City", Kind: form.Select, Ref: refCities.Name, Display: "city",
		Rules: []form.Rule{{Tag: "gte=1", Message: "City is required."}}},
	{Name: "numberOfDays", Label: "Days", Kind: form.Number,
		Rules: []form.Rule{{Tag: "gte=1", Message: "Number of days must be at least 1."}}},
	{Name: "numberOfNights", Label: "Nights", Kind: form.Number,
		Rules: []form.Rule{{Tag: "gte=1", Message: "Number of nights must be at least 1."}}},
}}

var vehicleSchema = form.Schema{Fields: []form.Field{
	text("company", "Company", 2, "Company must be at least 2 characters."),
	text("contactCompany", "Company Contact", 2, "Contact company must be at least 2 characters."),
	text("officer", "Officer", 2, "Officer must be at least 2 characters."),
	text("contactOfficer", "Officer Contact", 2, "Contact officer must be at least 2 characters."),
}}

// venueSchema covers housings and restaurants, which differ only in names.
func venueSchema(kind, label string) form.Schema {
	contact := "contact" + strings.ToUpper(kind[:1]) + kind[1:]
	return form.Schema{Fields: []form.Field{
		text(kind, label, 2, label+" must be at least 2 characters."),
		ref("cityId", "City", refCities, "city"),
		text("district", "District", 2, "District must be at least 2 characters."),
		text("address", "Address", 2, "Address must be at least 2 characters."),
		text("officer", "Officer", 2, "Officer must be at least 2 characters."),
		text("contactOfficer", "Officer Contact", 2, "Contact officer must be at least 2 characters."),
		text(contact, label+" Contact", 2, "Contact "+strings.ToLower(label)+" must be at least 2 characters."),
	}}
}

// flight reads airports as <prefix>...AirportId (with the name under
// <prefix>...Airport) but the API writes the id under <prefix>...Airport.
func flight(prefix, label string) []form.Field {
	airport := func(leg string) form.Field {
		f := ref(prefix+leg+"AirportId", label+" "+leg+" Airport", refAirports, prefix+leg+"Airport")
		f.Key = prefix + leg + "Airport"
		return f
	}
	return []form.Field{
		{Name: prefix + "No", Label: label + " Flight No", Kind: form.Text},
		{Name: prefix + "Departure", Label: label + " Departure", Kind: form.DateTime},
		airport("Departure"),
		{Name: prefix + "Landing", Label: label + " Landing", Kind: form.DateTime},
		airport("Landing"),
	}
}

var teamSchema = form.Schema{Fields: append([]form.Field{
	text("team", "Team", 2, "Team must be at least 2 characters."),
	ref("tourId", "Tour", refTours, "tour"),
	date("startsAt", "Starts At", "Start date must be at least 10 characters."),
	date("endsAt", "Ends At", "End date must be at least 10 characters."),
	ref("guideId", "Guide", refGuides, "guide"),
}, append(flight("flightOutward", "Outward"), flight("flightReturn", "Return")...)...)}

var touristSchema = form.Schema{Fields: []form.Field{
	text("name", "Name", 2, "Name must be at least 2 characters."),
	date("birth", "Birth", "Birth date must be at least 10 characters."),
	ref("genderId", "Gender", refGenders, "gender"),
	ref("nationalityId", "Nationality", refNationalities, "nationality"),
	{Name: "phone", Label: "Phone", Kind: form.Tel},
	text("address", "Address", 2, "Address must be at least 2 characters."),
	text("passportNo", "Passport No", 6, "Passport number must be at least 6 characters."),
	email(),
	text("intimate", "Intimate", 2, "Intimate must be at least 2 characters."),
	text("intimacy", "Intimacy", 2, "Intimacy must be at least 2 characters."),
	{Name: "intimatePhone", Label: "Intimate Phone", Kind: form.Tel},
	{Name: "amount", Label: "Amount", Kind: form.Number},
	ref("currencyId", "Currency", refCurrencies, "currency"),
	ref("paymentMethodId", "Payment Method", refPayments, "paymentMethod"),
	{Name: "isPayed", Label: "Paid", Kind: form.Checkbox},
}}

// ActivityPlaces are the mutually exclusive references of an activity.
var ActivityPlaces = []string{"hotelId", "airportId", "companyOfVehicleId", "restaurantId"}

var activitySchema = form.Schema{
	Fields: []form.Field{
		text("activity", "Activity", 2, "Activity must be at least 2 characters."),
		{Name: "activityTime", Label: "Activity Time", Kind: form.DateTime,
			Rules: []form.Rule{form.Min(10, "Activity time must be at least 10 characters.")}},
		{Name: "hotelId", Label: "Housing", Kind: form.Select, Ref: refHousings.Name, Display: "hotel", Optional: true},
		{Name: "companyOfVehicleId", Label: "Company of vehicle", Kind: form.Select, Ref: refVehicles.Name, Display: "companyOfVehicle", Optional: true},
		{Name: "plateOfVehicle", Label: "Plate of vehicle", Kind: form.Text},
		{Name: "contactOfDriver", Label: "Driver's contact", Kind: form.Tel},
		{Name: "restaurantId", Label: "Restaurant", Kind: form.Select, Ref: refRestaurants.Name, Display: "restaurant", Optional: true},
		{Name: "airportId", Label: "Airport", Kind: form.Select, Ref: refAirports.Name, Display: "airport", Optional: true},
	},
	Refinements: []form.Refinement{form.ExactlyOneOf("airportId",
		"Only one of hotel, airport, company of vehicle, or restaurant must be provided.",
		ActivityPlaces...)},
}

var (
	Guides = &Entity{
		Key: "guides", Title: "Guides", Singular: "Guide",
		Page: "/dashboard/guides", Actions: "/dashboard/guides",
		ListPath: "/admin/guides", Shape: Bundle, ItemsKey: "guides",
		Refs:       []RefSpec{refLanguages, refNationalities},
		TitleField: "name",
		Edit:       guideSchema(false), Create: guideSchema(true),
		CreatePath: "/post/guide", UpdatePath: "/put/guides/{id}", DeletePath: "/delete/guides/{id}",
	}

	Tours = &Entity{
		Key: "tours", Title: "Tours", Singular: "Tour",
		Page: "/dashboard/tours", Actions: "/dashboard/tours",
		ListPath: "/admin/tours", Shape: Bundle, ItemsKey: "tours",
		Refs:       []RefSpec{refCities},
		TitleField: "tour",
		Edit:       tourSchema, Create: tourSchema,
		CreatePath: "/post/tour", UpdatePath: "/put/tours", DeletePath: "/delete/tours/{id}",
	}

	Vehicles = &Entity{
		Key: "vehicles", Title: "Vehicles", Singular: "Vehicle",
		Page: "/dashboard/contractual/vehicles", Actions: "/dashboard/contractual/vehicles",
		ListPath: "/admin/vehicles", Shape: Array,
		TitleField: "company",
		Edit:       vehicleSchema, Create: vehicleSchema,
		CreatePath: "/post/vehicles", UpdatePath: "/put/vehicles/{id}", DeletePath: "/delete/vehicles/{id}",
		AdminOnly: true,
	}

	Housings = &Entity{
		Key: "housings", Title: "Housings", Singular: "Housing",
		Page: "/dashboard/contractual/housings", Actions: "/dashboard/contractual/housings",
		ListPath: "/admin/housings", Shape: Bundle, ItemsKey: "housings",
		Refs:       []RefSpec{refCities},
		TitleField: "housing",
		Edit:       venueSchema("housing", "Housing"), Create: venueSchema("housing", "Housing"),
		CreatePath: "/post/housing", UpdatePath: "/put/housings", DeletePath: "/delete/housings/{id}",
		AdminOnly: true,
	}

	Restaurants = &Entity{
		Key: "restaurants", Title: "Restaurants", Singular: "Restaurant",
		Page: "/dashboard/contractual/restaurants", Actions: "/dashboard/contractual/restaurants",
		ListPath: "/admin/restaurants", Shape: Bundle, ItemsKey: "restaurants",
		Refs:       []RefSpec{refCities},
		TitleField: "restaurant",
		Edit:       venueSchema("restaurant", "Restaurant"), Create: venueSchema("restaurant", "Restaurant"),
		CreatePath: "/post/restaurant", UpdatePath: "/put/restaurants/{id}", DeletePath: "/delete/restaurants/{id}",
		AdminOnly: true,
	}

	Team = &Entity{
		Key: "team", Title: "Team Details", Singular: "Team",
		Page: "/team/{team}", Actions: "/team/{team}/details",
		ListPath: "/teams/{team}", Shape: Single, ItemsKey: "team",
		Refs:           []RefSpec{refTours, refGuides, refAirports},
		CreateRefsPath: "/admin/team",
		TitleField:     "team",
		Edit:           teamSchema, Create: teamSchema,
		CreatePath: "/post/team", UpdatePath: "/put/teams/{team}", DeletePath: "/delete/teams/{team}",
		AdminOnly: true, AfterDelete: "/dashboard",
	}

	Activities = &Entity{
		Key: "activities", Title: "Activities", Singular: "Activity",
		Page: "/team/{team}", Actions: "/team/{team}/activities",
		ListPath: "/teams/{team}", Shape: Bundle, ItemsKey: "activities",
		Refs:       []RefSpec{refHousings, refVehicles, refRestaurants, refAirports},
		TitleField: "activity",
		Edit:       activitySchema, Create: activitySchema,
		CreatePath: "/post/activity", UpdatePath: "/put/activities/{id}", DeletePath: "/delete/teams/{team}/activity/{id}",
		ParentKey: "team", ParentField: "teamId",
		AdminOnly: true,
	}

	Tourists = &Entity{
		Key: "tourists", Title: "Tourists", Singular: "Tourist",
		Page: "/team/{team}/tourists", Actions: "/team/{team}/tourists",
		ListPath: "/teams/{team}/tourists", Shape: Bundle, ItemsKey: "tourists",
		Refs:       []RefSpec{refNationalities, refGenders, refCurrencies, refPayments},
		TitleField: "name",
		Edit:       touristSchema, Create: touristSchema,
		CreatePath: "/post/tourist", UpdatePath: "/put/tourists/{id}", DeletePath: "/delete/tourists/{id}",
		ParentKey: "team", ParentField: "teamId",
		AdminOnly: true,
	}
)

// Dashboard lists the top-level entities served under /dashboard.
var Dashboard = []*Entity{Guides, Tours, Vehicles, Housings, Restaurants}

// OtherSlugs are the flat reference tables editable under /dashboard/others.
var OtherSlugs = []string{"languages", "payment-methods", "genders", "airports", "nationalities", "currencies", "cities"}

var otherSchema = form.Schema{Fields: []form.Field{
	text("value", "Value", 1, "Value is required."),
}}

// Other is the shared config of every flat {id, value} reference table.
var Other = &Entity{
	Key: "others", Title: "Others", Singular: "Item",
	Page: "/dashboard/others/{slug}", Actions: "/dashboard/others/{slug}",
	ListPath: "/admin/{slug}", Shape: Array,
	TitleField: "value",
	Edit:       otherSchema, Create: otherSchema,
	CreatePath: "/post/{slug}", UpdatePath: "/put/{slug}/{id}", DeletePath: "/delete/{slug}/{id}",
	AdminOnly: true,
}

// KnownSlug reports whether slug names a reference table.
func KnownSlug(slug string) bool {
	for _, s := range OtherSlugs {
		if s == slug {
			return true
		}
	}
	return false
}
