package formula

// Element holds the per-element constants the featurizer needs.
type Element struct {
	Symbol string
	Number int
	Mass   float64 // standard atomic weight, g/mol
}

// elements maps a symbol to its constants. Masses are the IUPAC 2021
// conventional atomic weights; for elements with no stable isotope the mass
// number of the longest-lived isotope is used.
var elements = map[string]Element{
	"H": {"H", 1, 1.008}, "He": {"He", 2, 4.0026},
	"Li": {"Li", 3, 6.94}, "Be": {"Be", 4, 9.0122},
	"B": {"B", 5, 10.81}, "C": {"C", 6, 12.011},
	"N": {"N", 7, 14.007}, "O": {"O", 8, 15.999},
	"F": {"F", 9, 18.998}, "Ne": {"Ne", 10, 20.180},
	"Na": {"Na", 11, 22.990}, "Mg": {"Mg", 12, 24.305},
	"Al": {"Al", 13, 26.982}, "Si": {"Si", 14, 28.085},
	"P": {"P", 15, 30.974}, "S": {"S", 16, 32.06},
	"Cl": {"Cl", 17, 35.45}, "Ar": {"Ar", 18, 39.948},
	"K": {"K", 19, 39.098}, "Ca": {"Ca", 20, 40.078},
	"Sc": {"Sc", 21, 44.956}, "Ti": {"Ti", 22, 47.867},
	"V": {"V", 23, 50.942}, "Cr": {"Cr", 24, 51.996},
	"Mn": {"Mn", 25, 54.938}, "Fe": {"Fe", 26, 55.845},
	"Co": {"Co", 27, 58.933}, "Ni": {"Ni", 28, 58.693},
	"Cu": {"Cu", 29, 63.546}, "Zn": {"Zn", 30, 65.38},
	"Ga": {"Ga", 31, 69.723}, "Ge": {"Ge", 32, 72.630},
	"As": {"As", 33, 74.922}, "Se": {"Se", 34, 78.971},
	"Br": {"Br", 35, 79.904}, "Kr": {"Kr", 36, 83.798},
	"Rb": {"Rb", 37, 85.468}, "Sr": {"Sr", 38, 87.62},
	"Y": {"Y", 39, 88.906}, "Zr": {"Zr", 40, 91.224},
	"Nb": {"Nb", 41, 92.906}, "Mo": {"Mo", 42, 95.95},
	"Tc": {"Tc", 43, 97}, "Ru": {"Ru", 44, 101.07},
	"Rh": {"Rh", 45, 102.91}, "Pd": {"Pd", 46, 106.42},
	"Ag": {"Ag", 47, 107.87}, "Cd": {"Cd", 48, 112.41},
	"In": {"In", 49, 114.82}, "Sn": {"Sn", 50, 118.71},
	"Sb": {"Sb", 51, 121.76}, "Te": {"Te", 52, 127.60},
	"I": {"I", 53, 126.90}, "Xe": {"Xe", 54, 131.29},
	"Cs": {"Cs", 55, 132.91}, "Ba": {"Ba", 56, 137.33},
	"La": {"La", 57, 138.91}, "Ce": {"Ce", 58, 140.12},
	"Pr": {"Pr", 59, 140.91}, "Nd": {"Nd", 60, 144.24},
	"Pm": {"Pm", 61, 145}, "Sm": {"Sm", 62, 150.36},
	"Eu": {"Eu", 63, 151.96}, "Gd": {"Gd", 64, 157.25},
	"Tb": {"Tb", 65, 158.93}, "Dy": {"Dy", 66, 162.50},
	"Ho": {"Ho", 67, 164.93}, "Er": {"Er", 68, 167.26},
	"Tm": {"Tm", 69, 168.93}, "Yb": {"Yb", 70, 173.05},
	"Lu": {"Lu", 71, 174.97}, "Hf": {"Hf", 72, 178.49},
	"Ta": {"Ta", 73, 180.95}, "W": {"W", 74, 183.84},
	"Re": {"Re", 75, 186.21}, "Os": {"Os", 76, 190.23},
	"Ir": {"Ir", 77, 192.22}, "Pt": {"Pt", 78, 195.08},
	"Au": {"Au", 79, 196.97}, "Hg": {"Hg", 80, 200.59},
	"Tl": {"Tl", 81, 204.38}, "Pb": {"Pb", 82, 207.2},
	"Bi": {"Bi", 83, 208.98}, "Po": {"Po", 84, 209},
	"At": {"At", 85, 210}, "Rn": {"Rn", 86, 222},
	"Fr": {"Fr", 87, 223}, "Ra": {"Ra", 88, 226},
	"Ac": {"Ac", 89, 227}, "Th": {"Th", 90, 232.04},
	"Pa": {"Pa", 91, 231.04}, "U": {"U", 92, 238.03},
	"Np": {"Np", 93, 237}, "Pu": {"Pu", 94, 244},
	"Am": {"Am", 95, 243}, "Cm": {"Cm", 96, 247},
	"Bk": {"Bk", 97, 247}, "Cf": {"Cf", 98, 251},
	"Es": {"Es", 99, 252}, "Fm": {"Fm", 100, 257},
	"Md": {"Md", 101, 258}, "No": {"No", 102, 259},
	"Lr": {"Lr", 103, 266}, "Rf": {"Rf", 104, 267},
	"Db": {"Db", 105, 268}, "Sg": {"Sg", 106, 269},
	"Bh": {"Bh", 107, 270}, "Hs": {"Hs", 108, 269},
	"Mt": {"Mt", 109, 278}, "Ds": {"Ds", 110, 281},
	"Rg": {"Rg", 111, 282}, "Cn": {"Cn", 112, 285},
	"Nh": {"Nh", 113, 286}, "Fl": {"Fl", 114, 289},
	"Mc": {"Mc", 115, 290}, "Lv": {"Lv", 116, 293},
	"Ts": {"Ts", 117, 294}, "Og": {"Og", 118, 294},
}

// LookupElement returns the constants for a symbol.
func LookupElement(symbol string) (Element, bool) {
	e, ok := elements[symbol]
	return e, ok
}

// IsElement reports whether symbol names a known element.
func IsElement(symbol string) bool {
	_, ok := elements[symbol]
	return ok
}
