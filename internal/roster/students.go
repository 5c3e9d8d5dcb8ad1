package roster

import "github.com/noah-isme/pod-grading-api/internal/models"

// seedStudents is the roster every fresh or fully reset state starts from.
var seedStudents = []models.StudentInput{
	{FirstName: "LYLANA", LastName: "A", Homeroom: "7D"},
	{FirstName: "LAURA", LastName: "A", Homeroom: "7C"},
	{FirstName: "SEBASTIAN", LastName: "A", Homeroom: "7A"},
	{FirstName: "AZMERA", LastName: "A", Homeroom: "7E"},
	{FirstName: "ESMERALDA", LastName: "A", Homeroom: "7B"},
	{FirstName: "GABRIELA", LastName: "A", Homeroom: "7B"},
	{FirstName: "ISABELLA", LastName: "B", Homeroom: "7E"},
	{FirstName: "ADRIAN", LastName: "B", Homeroom: "7C"},
	{FirstName: "JOSUE", LastName: "B", Homeroom: "7D"},
	{FirstName: "KENYA", LastName: "B", Homeroom: "7D"},
	{FirstName: "GAREK", LastName: "C", Homeroom: "7B"},
	{FirstName: "SOPHIA", LastName: "C", Homeroom: "7E"},
	{FirstName: "ROMEO", LastName: "C", Homeroom: "7A"},
	{FirstName: "ANTHONY", LastName: "C", Homeroom: "7A"},
	{FirstName: "DIAMOND", LastName: "C", Homeroom: "7E"},
	{FirstName: "RYAN", LastName: "C", Homeroom: "7A"},
	{FirstName: "LORELY", LastName: "C", Homeroom: "7A"},
	{FirstName: "RAYMOND", LastName: "C", Homeroom: "7C"},
	{FirstName: "ISABELLA", LastName: "C", Homeroom: "7D"},
	{FirstName: "GIANA", LastName: "C", Homeroom: "7C"},
	{FirstName: "RAFAEL", LastName: "C", Homeroom: "7C"},
	{FirstName: "LANDON", LastName: "D", Homeroom: "7C"},
	{FirstName: "NATHAN", LastName: "D", Homeroom: "7E"},
	{FirstName: "EMILY", LastName: "D", Homeroom: "7D"},
	{FirstName: "GABRIELA", LastName: "E", Homeroom: "7C"},
	{FirstName: "KYRA", LastName: "F", Homeroom: "7B"},
	{FirstName: "PEDRO", LastName: "F", Homeroom: "7A"},
	{FirstName: "ETHAN", LastName: "G", Homeroom: "7B"},
	{FirstName: "CHRISTIAN", LastName: "G", Homeroom: "7E"},
	{FirstName: "ISAAC", LastName: "G", Homeroom: "7B"},
	{FirstName: "ISABELLE", LastName: "G", Homeroom: "7B"},
	{FirstName: "ISABELLA", LastName: "G", Homeroom: "7E"},
	{FirstName: "WILLIAM", LastName: "G", Homeroom: "7B"},
	{FirstName: "LESLIE", LastName: "G", Homeroom: "7D"},
	{FirstName: "ARABELA", LastName: "G", Homeroom: "7B"},
	{FirstName: "LAURA", LastName: "G", Homeroom: "7C"},
	{FirstName: "PAXTON", LastName: "G", Homeroom: "7A"},
	{FirstName: "CHRISTOPHER", LastName: "G", Homeroom: "7D"},
	{FirstName: "CHARLIE", LastName: "H", Homeroom: "7A"},
	{FirstName: "AVA", LastName: "H", Homeroom: "7E"},
	{FirstName: "CARLISLE", LastName: "H", Homeroom: "7C"},
	{FirstName: "ETIDO", LastName: "I", Homeroom: "7B"},
	{FirstName: "GIOVANNI", LastName: "L", Homeroom: "7C"},
	{FirstName: "ALEENA", LastName: "L", Homeroom: "7D"},
	{FirstName: "NAOMI", LastName: "L", Homeroom: "7E"},
	{FirstName: "PATRICIA", LastName: "L", Homeroom: "7A"},
	{FirstName: "VALENTINA", LastName: "L", Homeroom: "7D"},
	{FirstName: "LOLA", LastName: "L", Homeroom: "7A"},
	{FirstName: "ISAIAH", LastName: "L", Homeroom: "7A"},
	{FirstName: "ISAAC", LastName: "L", Homeroom: "7B"},
	{FirstName: "LOGAN", LastName: "L", Homeroom: "7E"},
	{FirstName: "KAREN", LastName: "L", Homeroom: "7E"},
	{FirstName: "AIDEN", LastName: "M", Homeroom: "7C"},
	{FirstName: "MELANIE", LastName: "M", Homeroom: "7D"},
	{FirstName: "ANALYCIA", LastName: "M", Homeroom: "7D"},
	{FirstName: "CECILIA", LastName: "M", Homeroom: "7D"},
	{FirstName: "BELLA", LastName: "M", Homeroom: "7C"},
	{FirstName: "YULEINY", LastName: "M", Homeroom: "7A"},
	{FirstName: "ORLANDO", LastName: "M", Homeroom: "7B"},
	{FirstName: "LEVI", LastName: "N", Homeroom: "7E"},
	{FirstName: "ADAEZE", LastName: "O", Homeroom: "7C"},
	{FirstName: "ARIANNA", LastName: "O", Homeroom: "7E"},
	{FirstName: "JULISSA", LastName: "O", Homeroom: "7B"},
	{FirstName: "MOISES", LastName: "O", Homeroom: "7E"},
	{FirstName: "ISMERAI", LastName: "O", Homeroom: "7A"},
	{FirstName: "ISARELI", LastName: "O", Homeroom: "7C"},
	{FirstName: "IKER", LastName: "P", Homeroom: "7A"},
	{FirstName: "JEREMY", LastName: "P", Homeroom: "7E"},
	{FirstName: "TOKY", LastName: "P", Homeroom: "7C"},
	{FirstName: "ETHAN", LastName: "P", Homeroom: ""},
	{FirstName: "LENA", LastName: "P", Homeroom: "7D"},
	{FirstName: "JOEL", LastName: "P", Homeroom: "7C"},
	{FirstName: "SAMUEL", LastName: "P", Homeroom: "7E"},
	{FirstName: "ALLISON", LastName: "P", Homeroom: "7C"},
	{FirstName: "XZAVIER", LastName: "P", Homeroom: "7D"},
	{FirstName: "MAKAI", LastName: "R", Homeroom: "7E"},
	{FirstName: "GABRIELA", LastName: "R", Homeroom: "7C"},
	{FirstName: "SCARLETT", LastName: "R", Homeroom: "7B"},
	{FirstName: "AIDEN", LastName: "R", Homeroom: "7B"},
	{FirstName: "AHLINA", LastName: "R", Homeroom: "7A"},
	{FirstName: "JASON", LastName: "R", Homeroom: "7D"},
	{FirstName: "EVELYN", LastName: "R", Homeroom: "7E"},
	{FirstName: "ISAAC", LastName: "R", Homeroom: "7B"},
	{FirstName: "MATEO", LastName: "R", Homeroom: "7A"},
	{FirstName: "ARIAN", LastName: "R", Homeroom: "7D"},
	{FirstName: "ELLA", LastName: "R", Homeroom: "7C"},
	{FirstName: "CHASE", LastName: "R", Homeroom: "7A"},
	{FirstName: "JORGE", LastName: "R", Homeroom: "7B"},
	{FirstName: "ADRIAN", LastName: "R", Homeroom: "7D"},
	{FirstName: "CAYLA", LastName: "S", Homeroom: "7D"},
	{FirstName: "RAIDEN", LastName: "S", Homeroom: "7D"},
	{FirstName: "LEILYNN", LastName: "S", Homeroom: "7D"},
	{FirstName: "ABIGAIL", LastName: "S", Homeroom: "7C"},
	{FirstName: "JAMARI", LastName: "S", Homeroom: "7C"},
	{FirstName: "ARDYN", LastName: "S", Homeroom: "7B"},
	{FirstName: "YAHYA", LastName: "S", Homeroom: "7E"},
	{FirstName: "MATTHEW", LastName: "T", Homeroom: "7A"},
	{FirstName: "STEPHANIE", LastName: "T", Homeroom: "7C"},
	{FirstName: "JONATHAN", LastName: "T", Homeroom: "7C"},
	{FirstName: "VICTOR", LastName: "V", Homeroom: "7A"},
	{FirstName: "AUDREY", LastName: "V", Homeroom: "7D"},
	{FirstName: "VALERIA", LastName: "V", Homeroom: "7A"},
	{FirstName: "DETZIREE", LastName: "V", Homeroom: "7A"},
	{FirstName: "ALEXANDER", LastName: "V", Homeroom: "7E"},
	{FirstName: "PERLA", LastName: "V", Homeroom: "7C"},
	{FirstName: "PEIGHTON", LastName: "W", Homeroom: "7E"},
	{FirstName: "ROBERTO", LastName: "W", Homeroom: "7B"},
	{FirstName: "BROCK", LastName: "W", Homeroom: "7A"},
}

// SeedStudents returns a copy of the built-in roster.
func SeedStudents() []models.StudentInput {
	out := make([]models.StudentInput, len(seedStudents))
	copy(out, seedStudents)
	return out
}
