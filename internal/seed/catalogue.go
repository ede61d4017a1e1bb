package seed

import "github.com/5w1tchy/book-explorer-api/internal/models"

type devUser struct {
	Email, Password, First, Last string
}

var devUsers = []devUser{
	{"john.doe@mail.com", "JohnDoe123", "John", "Doe"},
	{"jane.doe@mail.com", "JaneJane123", "Jane", "Doe"},
}

type sample struct {
	Title, Author string
	Type          models.BookType
	Genre         models.Genre
	Year          int
	Description   string
}

var catalogue = []sample{
	{"Run Away", "Harlan Coben", models.BookTypeNovel, models.GenreFiction, 2019,
		"A father searches for his missing daughter and uncovers secrets that reshape his family's past."},
	{"The Final Detail", "Harlan Coben", models.BookTypeNovel, models.GenreFiction, 1998,
		"A fast-paced thriller of family secrets, betrayal and a case that threatens everyone involved."},
	{"Tell No One", "Harlan Coben", models.BookTypeNovel, models.GenreFiction, 2001,
		"Eight years after his wife's murder, Dr. David Beck receives a sign that she may still be alive."},
	{"The Selfish Gene", "Richard Dawkins", models.BookTypeNonFiction, models.GenreSelfHelp, 1976,
		"A gene-centred view of evolution that explains altruism and behaviour through gene survival."},
	{"When the Body Says No", "Gabor Maté", models.BookTypeNonFiction, models.GenreSelfHelp, 2003,
		"Case studies and research on how stress and suppressed emotion show up as chronic illness."},
	{"Atomic Habits", "James Clear", models.BookTypeNonFiction, models.GenreSelfHelp, 2018,
		"How tiny, consistent changes compound into remarkable results, built on systems over goals."},
	{"The Monk Who Sold His Ferrari", "Robin Sharma", models.BookTypeNovel, models.GenreSelfHelp, 1997,
		"A burnt-out lawyer travels to India and returns with lessons on purpose and mindful living."},
	{"One Hundred Years of Solitude", "Gabriel Garcia Marquez", models.BookTypeNovel, models.GenreFiction, 1967,
		"Seven generations of the Buendía family in Macondo, a landmark of magical realism."},
	{"To Kill a Mockingbird", "Harper Lee", models.BookTypeNovel, models.GenreFiction, 1960,
		"Scout Finch watches her father defend a wrongly accused man in a divided Alabama town."},
	{"Love in the Time of Cholera", "Gabriel Garcia Marquez", models.BookTypeNovel, models.GenreFiction, 1985,
		"Florentino Ariza waits more than fifty years to declare his love to Fermina Daza again."},
	{"The Little Prince", "Antoine de Saint-Exupéry", models.BookTypeNovel, models.GenreFantasy, 1943,
		"A stranded pilot meets a young prince who has travelled from planet to planet."},
	{"Before the Coffee Gets Cold", "Toshikazu Kawaguchi", models.BookTypeNovel, models.GenreFiction, 2015,
		"In a small Tokyo café visitors may travel back in time, but only until their coffee goes cold."},
	{"Dune", "Frank Herbert", models.BookTypeNovel, models.GenreSciFi, 1965,
		"Paul Atreides and his family take control of Arrakis, the only source of the spice melange."},
	{"Harry Potter and the Philosopher's Stone", "J.K. Rowling", models.BookTypeNovel, models.GenreFantasy, 1997,
		"An orphan learns he is a wizard and starts his first year at Hogwarts."},
	{"Leaves of Grass", "Walt Whitman", models.BookTypePoetry, models.GenreFiction, 1855,
		"Whitman's lifelong free-verse collection celebrating democracy, nature and the common person."},
	{"The Waste Land", "T.S. Eliot", models.BookTypePoetry, models.GenreFiction, 1922,
		"A fragmented modernist poem of post-war disillusionment in five sections."},
}
