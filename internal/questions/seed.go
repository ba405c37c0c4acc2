package questions

// DefaultCatalog returns the built-in question bank. It keeps the server
// playable without a database.
func DefaultCatalog() *MemoryCatalog {
	return NewMemoryCatalog([]Question{
		{ID: 1, Text: "What is the capital of France?", Options: []string{"Paris", "London", "Berlin", "Madrid"}, Correct: 0, Category: "Geography", Difficulty: "easy"},
		{ID: 2, Text: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, Correct: 1, Category: "General", Difficulty: "easy"},
		{ID: 3, Text: "What color is the sky on a clear day?", Options: []string{"Blue", "Green", "Red", "Yellow"}, Correct: 0, Category: "General", Difficulty: "easy"},
		{ID: 4, Text: "Which is the largest planet in the solar system?", Options: []string{"Earth", "Mars", "Jupiter", "Venus"}, Correct: 2, Category: "Science", Difficulty: "easy", Explanation: "Jupiter's mass is more than twice that of all other planets combined."},
		{ID: 5, Text: "Who wrote 'Romeo and Juliet'?", Options: []string{"Shakespeare", "Dickens", "Hemingway", "Tolkien"}, Correct: 0, Category: "Entertainment", Difficulty: "easy"},
		{ID: 6, Text: "What is the chemical symbol for gold?", Options: []string{"Go", "Gd", "Au", "Ag"}, Correct: 2, Category: "Science", Difficulty: "medium", Explanation: "From the Latin 'aurum'."},
		{ID: 7, Text: "Which country has the longest coastline?", Options: []string{"Russia", "Australia", "Canada", "Norway"}, Correct: 2, Category: "Geography", Difficulty: "medium"},
		{ID: 8, Text: "In which year did the Berlin Wall fall?", Options: []string{"1987", "1989", "1991", "1993"}, Correct: 1, Category: "History", Difficulty: "medium"},
		{ID: 9, Text: "How many bones are in the adult human body?", Options: []string{"186", "206", "226", "246"}, Correct: 1, Category: "Science", Difficulty: "medium"},
		{ID: 10, Text: "Which planet rotates on its side?", Options: []string{"Neptune", "Saturn", "Uranus", "Mercury"}, Correct: 2, Category: "Science", Difficulty: "hard", Explanation: "Uranus's axial tilt is about 98 degrees."},
		{ID: 11, Text: "What is the smallest country in the world?", Options: []string{"Monaco", "Vatican City", "San Marino", "Liechtenstein"}, Correct: 1, Category: "Geography", Difficulty: "easy"},
		{ID: 12, Text: "Who painted the Sistine Chapel ceiling?", Options: []string{"Da Vinci", "Raphael", "Michelangelo", "Donatello"}, Correct: 2, Category: "Entertainment", Difficulty: "medium"},
		{ID: 13, Text: "What is the longest river in the world?", Options: []string{"Amazon", "Nile", "Yangtze", "Mississippi"}, Correct: 1, Category: "Geography", Difficulty: "hard", Explanation: "By most measurements the Nile edges out the Amazon."},
		{ID: 14, Text: "Which gas do plants absorb from the atmosphere?", Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Hydrogen"}, Correct: 2, Category: "Science", Difficulty: "easy"},
		{ID: 15, Text: "In which decade was the first email sent?", Options: []string{"1960s", "1970s", "1980s", "1990s"}, Correct: 1, Category: "History", Difficulty: "hard", Explanation: "Ray Tomlinson sent the first networked email in 1971."},
	})
}
