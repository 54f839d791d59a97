package model

// Districts lists the Karnataka districts offered by the signup form.
var Districts = []string{
	"Bangalore Rural", "Bangalore Urban", "Mysore", "Hassan", "Mandya",
	"Tumkur", "Belgaum", "Hubli-Dharwad", "Gulbarga", "Bijapur",
	"Bellary", "Raichur", "Koppal", "Gadag", "Haveri", "Uttara Kannada",
	"Dakshina Kannada", "Udupi", "Shimoga", "Chikmagalur", "Kodagu",
	"Chitradurga", "Davanagere", "Kolar", "Chikballapur", "Yadgir",
	"Ramanagara", "Bagalkot", "Vijayapura", "Chamarajanagar",
}
