package catalog

import "github.com/glitchhunt/glitchhunt-backend/internal/engine"

var mapsByLanguage = map[string][]Map{
	"csharp": {
		{
			ID:          "calculator",
			Name:        "Calculator",
			Description: "A simple calculator with basic operations. Math helper and main entry.",
			Files: []engine.FileContent{
				{
					Name:     "MathOps.cs",
					Language: "csharp",
					Content: `namespace Calculator;

public static class MathOps
{
    public static int Add(int a, int b)
    {
        return a + b;
    }

    public static int Subtract(int a, int b)
    {
        return a - b;
    }

    public static int Multiply(int a, int b)
    {
        return a * b;
    }

    public static int Divide(int a, int b)
    {
        if (b == 0) throw new ArgumentException("Divide by zero");
        return a / b;
    }
}
`,
				},
				{
					Name:     "Program.cs",
					Language: "csharp",
					Content: `using Calculator;

class Program
{
    static void Main(string[] args)
    {
        int x = 10;
        int y = 3;
        Console.WriteLine("Sum: " + MathOps.Add(x, y));
        Console.WriteLine("Diff: " + MathOps.Subtract(x, y));
        Console.WriteLine("Product: " + MathOps.Multiply(x, y));
        Console.WriteLine("Quotient: " + MathOps.Divide(x, y));
    }
}
`,
				},
			},
		},
		{
			ID:          "todo",
			Name:        "Todo List",
			Description: "A small in-memory todo list. Task model, store, and console runner.",
			Files: []engine.FileContent{
				{
					Name:     "Task.cs",
					Language: "csharp",
					Content: `namespace Todo;

public class Task
{
    public int Id { get; set; }
    public string Text { get; set; } = "";
    public bool Done { get; set; }

    public override string ToString()
    {
        return (Done ? "[x]" : "[ ]") + " " + Text;
    }
}
`,
				},
				{
					Name:     "Store.cs",
					Language: "csharp",
					Content: `namespace Todo;

public class Store
{
    private readonly List<Task> _tasks = new();
    private int _nextId = 1;

    public void Add(string text)
    {
        _tasks.Add(new Task { Id = _nextId++, Text = text, Done = false });
    }

    public IEnumerable<Task> All() => _tasks;

    public void Toggle(int id)
    {
        var t = _tasks.FirstOrDefault(x => x.Id == id);
        if (t != null) t.Done = !t.Done;
    }
}
`,
				},
				{
					Name:     "Program.cs",
					Language: "csharp",
					Content: `using Todo;

class Program
{
    static void Main()
    {
        var store = new Store();
        store.Add("Learn C#");
        store.Add("Build app");
        foreach (var t in store.All())
            Console.WriteLine(t.ToString());
    }
}
`,
				},
			},
		},
	},
	"c": {
		{
			ID:          "calculator",
			Name:        "Calculator",
			Description: "A simple calculator with basic operations. Math functions and main.",
			Files: []engine.FileContent{
				{
					Name:     "math.c",
					Language: "c",
					Content: `#include "math.h"

int add(int a, int b)
{
    return a + b;
}

int subtract(int a, int b)
{
    return a - b;
}

int multiply(int a, int b)
{
    return a * b;
}

int divide(int a, int b)
{
    if (b == 0) return 0;
    return a / b;
}
`,
				},
				{
					Name:     "main.c",
					Language: "c",
					Content: `#include <stdio.h>
#include "math.h"

int main(void)
{
    int x = 10;
    int y = 3;
    printf("Sum: %d\n", add(x, y));
    printf("Diff: %d\n", subtract(x, y));
    printf("Product: %d\n", multiply(x, y));
    printf("Quotient: %d\n", divide(x, y));
    return 0;
}
`,
				},
			},
		},
		{
			ID:          "game",
			Name:        "Number Game",
			Description: "A guess-the-number game. RNG and main loop.",
			Files: []engine.FileContent{
				{
					Name:     "game.c",
					Language: "c",
					Content: `#include <stdlib.h>
#include <time.h>

static int secret = 0;

void game_init(int min, int max)
{
    srand((unsigned)time(NULL));
    secret = min + rand() % (max - min + 1);
}

int game_guess(int n)
{
    if (n == secret) return 1;
    return 0;
}

int game_hint(int n)
{
    if (n < secret) return 1;
    if (n > secret) return -1;
    return 0;
}
`,
				},
				{
					Name:     "main.c",
					Language: "c",
					Content: `#include <stdio.h>
#include "game.c"

int main(void)
{
    int guess, result;
    game_init(1, 100);
    while (1)
    {
        scanf("%d", &guess);
        result = game_guess(guess);
        if (result) break;
        int h = game_hint(guess);
        printf("%s\n", h == 1 ? "Higher" : "Lower");
    }
    printf("Correct!\n");
    return 0;
}
`,
				},
			},
		},
	},
	"python": {
		{
			ID:          "calculator",
			Name:        "Calculator",
			Description: "A simple calculator with basic operations. Math module and main script.",
			Files: []engine.FileContent{
				{
					Name:     "math_ops.py",
					Language: "python",
					Content: `def add(a: float, b: float) -> float:
    return a + b


def subtract(a: float, b: float) -> float:
    return a - b


def multiply(a: float, b: float) -> float:
    return a * b


def divide(a: float, b: float) -> float:
    if b == 0:
        raise ValueError("Divide by zero")
    return a / b
`,
				},
				{
					Name:     "main.py",
					Language: "python",
					Content: `from math_ops import add, subtract, multiply, divide

x = 10
y = 3
print("Sum:", add(x, y))
print("Diff:", subtract(x, y))
print("Product:", multiply(x, y))
print("Quotient:", divide(x, y))
`,
				},
			},
		},
		{
			ID:          "todo",
			Name:        "Todo List",
			Description: "A command-line todo list. Store, render, and main.",
			Files: []engine.FileContent{
				{
					Name:     "store.py",
					Language: "python",
					Content: `tasks: list[dict] = []


def add_task(text: str) -> None:
    tasks.append({"id": len(tasks), "text": text, "done": False})


def list_tasks() -> list[dict]:
    return tasks


def mark_done(task_id: int) -> None:
    for t in tasks:
        if t["id"] == task_id:
            t["done"] = True
            break
`,
				},
				{
					Name:     "main.py",
					Language: "python",
					Content: `from store import add_task, list_tasks, mark_done

add_task("Learn Python")
add_task("Build app")
for t in list_tasks():
    status = "[x]" if t["done"] else "[ ]"
    print(f"{status} {t['text']}")
`,
				},
			},
		},
		{
			ID:          "game",
			Name:        "Number Game",
			Description: "A guess-the-number game. Game logic and main loop.",
			Files: []engine.FileContent{
				{
					Name:     "game.py",
					Language: "python",
					Content: `import random


def new_game(low: int, high: int) -> int:
    return random.randint(low, high)


def check_guess(secret: int, guess: int) -> int:
    if guess == secret:
        return 0
    if guess < secret:
        return 1
    return -1
`,
				},
				{
					Name:     "main.py",
					Language: "python",
					Content: `from game import new_game, check_guess

secret = new_game(1, 100)
while True:
    try:
        guess = int(input("Guess: "))
    except ValueError:
        continue
    result = check_guess(secret, guess)
    if result == 0:
        print("Correct!")
        break
    print("Higher" if result == 1 else "Lower")
`,
				},
			},
		},
	},
}

// fallbackTemplates back a round when a language has no usable maps.
var fallbackTemplates = map[string][]engine.FileContent{
	"csharp": {
		{
			Name:     "Utils.cs",
			Language: "csharp",
			Content: `namespace App;

public static class Utils
{
    public static int Add(int a, int b)
    {
        return a + b;
    }

    public static string Greet(string name)
    {
        return "Hello, " + name;
    }
}
`,
		},
		{
			Name:     "Program.cs",
			Language: "csharp",
			Content: `using App;

class Program
{
    static void Main()
    {
        int x = 10;
        int y = 3;
        Console.WriteLine(Utils.Greet("World"));
        Console.WriteLine("Sum: " + Utils.Add(x, y));
    }
}
`,
		},
	},
	"python": {
		{
			Name:     "utils.py",
			Language: "python",
			Content: `def add(a: int, b: int) -> int:
    return a + b


def greet(name: str) -> str:
    return "Hello, " + name
`,
		},
		{
			Name:     "main.py",
			Language: "python",
			Content: `from utils import add, greet

print(greet("World"))
print("Sum:", add(10, 3))
`,
		},
	},
}
