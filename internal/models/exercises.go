package models

// Exercise kinds
const (
	KindRepBased  = "rep-based"
	KindTimeBased = "time-based"
)

type Exercise struct {
	ID              Category `json:"id"`
	Name            string   `json:"name"`
	Kind            string   `json:"kind"`
	DurationSeconds int      `json:"durationSeconds"`
	Description     string   `json:"description"`
	Instructions    []string `json:"instructions"`
}

// Exercises is the built-in catalog. Each entry is one queue category.
var Exercises = []Exercise{
	{
		ID:              "squats",
		Name:            "Squats",
		Kind:            KindRepBased,
		DurationSeconds: 60,
		Description:     "Classic bodyweight squats, go low and count your reps!",
		Instructions: []string{
			"Stand with feet shoulder-width apart",
			"Lower your body by bending knees and hips",
			"Keep your back straight and chest up",
			"Go down until thighs are parallel to ground",
			"Push through heels to return to starting position",
		},
	},
	{
		ID:              "push-ups",
		Name:            "Push-ups",
		Kind:            KindRepBased,
		DurationSeconds: 60,
		Description:     "Standard push-ups, chest to the ground!",
		Instructions: []string{
			"Start in plank position with hands shoulder-width apart",
			"Keep your body in a straight line",
			"Lower your chest to the ground",
			"Push back up to starting position",
		},
	},
	{
		ID:              "sit-ups",
		Name:            "Sit-ups",
		Kind:            KindRepBased,
		DurationSeconds: 60,
		Description:     "Core crushing sit-ups!",
		Instructions: []string{
			"Lie on your back with knees bent",
			"Place hands behind your head or across chest",
			"Lift your upper body toward your knees",
			"Lower back down with control",
		},
	},
	{
		ID:              "jumping-jacks",
		Name:            "Jumping Jacks",
		Kind:            KindRepBased,
		DurationSeconds: 60,
		Description:     "Fast-paced jumping jacks to get your heart rate up!",
		Instructions: []string{
			"Start with feet together, arms at sides",
			"Jump and spread feet wide while raising arms overhead",
			"Jump back to starting position",
		},
	},
	{
		ID:              "burpees",
		Name:            "Burpees",
		Kind:            KindRepBased,
		DurationSeconds: 90,
		Description:     "Full-body burpees, the ultimate test!",
		Instructions: []string{
			"Drop into a squat and place hands on ground",
			"Jump feet back into plank position",
			"Jump feet back to squat",
			"Explosively jump up with arms overhead",
		},
	},
	{
		ID:              "plank",
		Name:            "Plank Hold",
		Kind:            KindTimeBased,
		DurationSeconds: 90,
		Description:     "Hold that plank as long as you can!",
		Instructions: []string{
			"Start in forearm plank position",
			"Keep body in straight line from head to heels",
			"Hold position without sagging",
		},
	},
	{
		ID:              "wall-sit",
		Name:            "Wall Sit",
		Kind:            KindTimeBased,
		DurationSeconds: 90,
		Description:     "Quad-burning wall sit challenge!",
		Instructions: []string{
			"Stand with back against wall",
			"Slide down until thighs are parallel to ground",
			"Hold position and endure the burn",
		},
	},
}

// LookupExercise returns the catalog entry for a category.
func LookupExercise(c Category) (Exercise, bool) {
	for _, ex := range Exercises {
		if ex.ID == c {
			return ex, true
		}
	}
	return Exercise{}, false
}

// Categories lists every catalog category in catalog order.
func Categories() []Category {
	out := make([]Category, 0, len(Exercises))
	for _, ex := range Exercises {
		out = append(out, ex.ID)
	}
	return out
}
