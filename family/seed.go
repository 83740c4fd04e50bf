package family

// SeedPeople is the starter tree loaded when storage holds nothing yet.
func SeedPeople() People {
	people := People{
		"p1": {
			ID: "p1", Name: "Elias Harb", Gender: Male,
			FamilyID: "p1", SpouseID: "p2", SpouseIDs: []ID{"p2", "p6"},
			ChildrenIDs: []ID{"p4"},
		},
		"p2": {
			ID: "p2", Name: "Safiya Zein", Gender: Female,
			FatherID: "p3", MotherID: "p5", FamilyID: "p3", SpouseID: "p1",
			ChildrenIDs: []ID{"p4"},
		},
		"p3": {
			ID: "p3", Name: "Salem Zein", Gender: Male,
			FamilyID: "p3", SpouseID: "p5",
			ChildrenIDs: []ID{"p2", "p6"},
		},
		"p4": {
			ID: "p4", Name: "Mohamed Harb", Gender: Male,
			FatherID: "p1", MotherID: "p2", FamilyID: "p1",
			ChildrenIDs: []ID{},
		},
		"p5": {
			ID: "p5", Name: "Hajja Didi", Gender: Female,
			SpouseID: "p3",
			ChildrenIDs: []ID{"p2", "p6"},
		},
		"p6": {
			ID: "p6", Name: "Taslim Zein", Gender: Female,
			FatherID: "p3", MotherID: "p5", FamilyID: "p3",
			ChildrenIDs: []ID{},
		},
	}
	return people
}
