package graphql

// This file will be automatically regenerated based on the schema, any resolver implementations
// will be copied through when generating and any unknown code will be moved to the end.
// Code generated by github.com/99designs/gqlgen version v0.17.86

import (
	"context"

	"github.com/holocron-dev/holocron/pkg/graphql/model"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/services"
)

// ID is the resolver for the id field.
func (r *planetResolver) ID(ctx context.Context, obj *models.Planet) (string, error) {
	return ToGlobalID(TypePlanet, obj.ID), nil
}

// RotationPeriod is the resolver for the rotationPeriod field.
func (r *planetResolver) RotationPeriod(ctx context.Context, obj *models.Planet) (*string, error) {
	return optional(obj.RotationPeriod), nil
}

// OrbitalPeriod is the resolver for the orbitalPeriod field.
func (r *planetResolver) OrbitalPeriod(ctx context.Context, obj *models.Planet) (*string, error) {
	return optional(obj.OrbitalPeriod), nil
}

// Diameter is the resolver for the diameter field.
func (r *planetResolver) Diameter(ctx context.Context, obj *models.Planet) (*string, error) {
	return optional(obj.Diameter), nil
}

// Climate is the resolver for the climate field.
func (r *planetResolver) Climate(ctx context.Context, obj *models.Planet) (*string, error) {
	return optional(obj.Climate), nil
}

// Gravity is the resolver for the gravity field.
func (r *planetResolver) Gravity(ctx context.Context, obj *models.Planet) (*string, error) {
	return optional(obj.Gravity), nil
}

// Terrain is the resolver for the terrain field.
func (r *planetResolver) Terrain(ctx context.Context, obj *models.Planet) (*string, error) {
	return optional(obj.Terrain), nil
}

// SurfaceWater is the resolver for the surfaceWater field.
func (r *planetResolver) SurfaceWater(ctx context.Context, obj *models.Planet) (*string, error) {
	return optional(obj.SurfaceWater), nil
}

// Population is the resolver for the population field.
func (r *planetResolver) Population(ctx context.Context, obj *models.Planet) (*string, error) {
	return optional(obj.Population), nil
}

// SwapiURL is the resolver for the swapiUrl field.
func (r *planetResolver) SwapiURL(ctx context.Context, obj *models.Planet) (*string, error) {
	return optional(obj.SwapiURL), nil
}

// Created is the resolver for the created field.
func (r *planetResolver) Created(ctx context.Context, obj *models.Planet) (string, error) {
	return timestamp(obj.Created), nil
}

// Edited is the resolver for the edited field.
func (r *planetResolver) Edited(ctx context.Context, obj *models.Planet) (string, error) {
	return timestamp(obj.Edited), nil
}

// Residents is the resolver for the residents field.
func (r *planetResolver) Residents(ctx context.Context, obj *models.Planet, first *int, after *string) (*model.PersonConnection, error) {
	people, err := r.planets.Residents(ctx, obj.ID)
	if err != nil {
		return nil, err
	}
	return personConnection(people, first, after, r.maxFirst)
}

// Films is the resolver for the films field.
func (r *planetResolver) Films(ctx context.Context, obj *models.Planet, first *int, after *string) (*model.FilmConnection, error) {
	films, err := r.planets.Films(ctx, obj.ID)
	if err != nil {
		return nil, err
	}
	return filmConnection(films, first, after, r.maxFirst)
}

// ID is the resolver for the id field.
func (r *filmResolver) ID(ctx context.Context, obj *models.Film) (string, error) {
	return ToGlobalID(TypeFilm, obj.ID), nil
}

// OpeningCrawl is the resolver for the openingCrawl field.
func (r *filmResolver) OpeningCrawl(ctx context.Context, obj *models.Film) (*string, error) {
	return optional(obj.OpeningCrawl), nil
}

// Director is the resolver for the director field.
func (r *filmResolver) Director(ctx context.Context, obj *models.Film) (*string, error) {
	return optional(obj.Director), nil
}

// Producer is the resolver for the producer field.
func (r *filmResolver) Producer(ctx context.Context, obj *models.Film) (*string, error) {
	return optional(obj.Producer), nil
}

// ReleaseDate is the resolver for the releaseDate field.
func (r *filmResolver) ReleaseDate(ctx context.Context, obj *models.Film) (*string, error) {
	return optional(obj.ReleaseDateString()), nil
}

// SwapiURL is the resolver for the swapiUrl field.
func (r *filmResolver) SwapiURL(ctx context.Context, obj *models.Film) (*string, error) {
	return optional(obj.SwapiURL), nil
}

// Created is the resolver for the created field.
func (r *filmResolver) Created(ctx context.Context, obj *models.Film) (string, error) {
	return timestamp(obj.Created), nil
}

// Edited is the resolver for the edited field.
func (r *filmResolver) Edited(ctx context.Context, obj *models.Film) (string, error) {
	return timestamp(obj.Edited), nil
}

// Characters is the resolver for the characters field.
func (r *filmResolver) Characters(ctx context.Context, obj *models.Film, first *int, after *string) (*model.PersonConnection, error) {
	people, err := r.films.CharactersInFilm(ctx, obj.ID)
	if err != nil {
		return nil, err
	}
	return personConnection(people, first, after, r.maxFirst)
}

// Planets is the resolver for the planets field.
func (r *filmResolver) Planets(ctx context.Context, obj *models.Film, first *int, after *string) (*model.PlanetConnection, error) {
	planets, err := r.films.Planets(ctx, obj.ID)
	if err != nil {
		return nil, err
	}
	return planetConnection(planets, first, after, r.maxFirst)
}

// Species is the resolver for the species field.
func (r *filmResolver) Species(ctx context.Context, obj *models.Film, first *int, after *string) (*model.SpeciesConnection, error) {
	species, err := r.films.Species(ctx, obj.ID)
	if err != nil {
		return nil, err
	}
	return speciesConnection(species, first, after, r.maxFirst)
}

// ID is the resolver for the id field.
func (r *personResolver) ID(ctx context.Context, obj *models.Person) (string, error) {
	return ToGlobalID(TypePerson, obj.ID), nil
}

// Height is the resolver for the height field.
func (r *personResolver) Height(ctx context.Context, obj *models.Person) (*string, error) {
	return optional(obj.Height), nil
}

// Mass is the resolver for the mass field.
func (r *personResolver) Mass(ctx context.Context, obj *models.Person) (*string, error) {
	return optional(obj.Mass), nil
}

// HairColor is the resolver for the hairColor field.
func (r *personResolver) HairColor(ctx context.Context, obj *models.Person) (*string, error) {
	return optional(obj.HairColor), nil
}

// SkinColor is the resolver for the skinColor field.
func (r *personResolver) SkinColor(ctx context.Context, obj *models.Person) (*string, error) {
	return optional(obj.SkinColor), nil
}

// EyeColor is the resolver for the eyeColor field.
func (r *personResolver) EyeColor(ctx context.Context, obj *models.Person) (*string, error) {
	return optional(obj.EyeColor), nil
}

// BirthYear is the resolver for the birthYear field.
func (r *personResolver) BirthYear(ctx context.Context, obj *models.Person) (*string, error) {
	return optional(obj.BirthYear), nil
}

// Gender is the resolver for the gender field.
func (r *personResolver) Gender(ctx context.Context, obj *models.Person) (*string, error) {
	return optional(string(obj.Gender)), nil
}

// Homeworld is the resolver for the homeworld field.
func (r *personResolver) Homeworld(ctx context.Context, obj *models.Person) (*models.Planet, error) {
	return r.homeworld(ctx, obj.Homeworld, obj.HomeworldID)
}

// SwapiURL is the resolver for the swapiUrl field.
func (r *personResolver) SwapiURL(ctx context.Context, obj *models.Person) (*string, error) {
	return optional(obj.SwapiURL), nil
}

// Created is the resolver for the created field.
func (r *personResolver) Created(ctx context.Context, obj *models.Person) (string, error) {
	return timestamp(obj.Created), nil
}

// Edited is the resolver for the edited field.
func (r *personResolver) Edited(ctx context.Context, obj *models.Person) (string, error) {
	return timestamp(obj.Edited), nil
}

// Films is the resolver for the films field.
func (r *personResolver) Films(ctx context.Context, obj *models.Person, first *int, after *string) (*model.FilmConnection, error) {
	films, err := r.people.FilmsByCharacter(ctx, obj.ID)
	if err != nil {
		return nil, err
	}
	return filmConnection(films, first, after, r.maxFirst)
}

// Species is the resolver for the species field.
func (r *personResolver) Species(ctx context.Context, obj *models.Person, first *int, after *string) (*model.SpeciesConnection, error) {
	species, err := r.people.Species(ctx, obj.ID)
	if err != nil {
		return nil, err
	}
	return speciesConnection(species, first, after, r.maxFirst)
}

// ID is the resolver for the id field.
func (r *speciesResolver) ID(ctx context.Context, obj *models.Species) (string, error) {
	return ToGlobalID(TypeSpecies, obj.ID), nil
}

// Classification is the resolver for the classification field.
func (r *speciesResolver) Classification(ctx context.Context, obj *models.Species) (*string, error) {
	return optional(obj.Classification), nil
}

// Designation is the resolver for the designation field.
func (r *speciesResolver) Designation(ctx context.Context, obj *models.Species) (*string, error) {
	return optional(obj.Designation), nil
}

// AverageHeight is the resolver for the averageHeight field.
func (r *speciesResolver) AverageHeight(ctx context.Context, obj *models.Species) (*string, error) {
	return optional(obj.AverageHeight), nil
}

// SkinColors is the resolver for the skinColors field.
func (r *speciesResolver) SkinColors(ctx context.Context, obj *models.Species) (*string, error) {
	return optional(obj.SkinColors), nil
}

// HairColors is the resolver for the hairColors field.
func (r *speciesResolver) HairColors(ctx context.Context, obj *models.Species) (*string, error) {
	return optional(obj.HairColors), nil
}

// EyeColors is the resolver for the eyeColors field.
func (r *speciesResolver) EyeColors(ctx context.Context, obj *models.Species) (*string, error) {
	return optional(obj.EyeColors), nil
}

// AverageLifespan is the resolver for the averageLifespan field.
func (r *speciesResolver) AverageLifespan(ctx context.Context, obj *models.Species) (*string, error) {
	return optional(obj.AverageLifespan), nil
}

// Language is the resolver for the language field.
func (r *speciesResolver) Language(ctx context.Context, obj *models.Species) (*string, error) {
	return optional(obj.Language), nil
}

// Homeworld is the resolver for the homeworld field.
func (r *speciesResolver) Homeworld(ctx context.Context, obj *models.Species) (*models.Planet, error) {
	return r.homeworld(ctx, obj.Homeworld, obj.HomeworldID)
}

// SwapiURL is the resolver for the swapiUrl field.
func (r *speciesResolver) SwapiURL(ctx context.Context, obj *models.Species) (*string, error) {
	return optional(obj.SwapiURL), nil
}

// Created is the resolver for the created field.
func (r *speciesResolver) Created(ctx context.Context, obj *models.Species) (string, error) {
	return timestamp(obj.Created), nil
}

// Edited is the resolver for the edited field.
func (r *speciesResolver) Edited(ctx context.Context, obj *models.Species) (string, error) {
	return timestamp(obj.Edited), nil
}

// People is the resolver for the people field.
func (r *speciesResolver) People(ctx context.Context, obj *models.Species, first *int, after *string) (*model.PersonConnection, error) {
	people, err := r.species.People(ctx, obj.ID)
	if err != nil {
		return nil, err
	}
	return personConnection(people, first, after, r.maxFirst)
}

// Films is the resolver for the films field.
func (r *speciesResolver) Films(ctx context.Context, obj *models.Species, first *int, after *string) (*model.FilmConnection, error) {
	films, err := r.species.Films(ctx, obj.ID)
	if err != nil {
		return nil, err
	}
	return filmConnection(films, first, after, r.maxFirst)
}

// Node is the resolver for the node field.
func (r *queryResolver) Node(ctx context.Context, id string) (models.Node, error) {
	typeName, uid, err := FromGlobalID(id)
	if err != nil {
		return nil, err
	}
	if typeName != "" {
		return r.fetch(ctx, typeName, uid)
	}
	for _, t := range []string{TypePerson, TypeFilm, TypePlanet, TypeSpecies} {
		node, err := r.fetch(ctx, t, uid)
		if err != nil || node != nil {
			return node, err
		}
	}
	return nil, nil
}

// Person is the resolver for the person field.
func (r *queryResolver) Person(ctx context.Context, id string) (*models.Person, error) {
	uid, ok, err := parseID(TypePerson, id)
	if err != nil || !ok {
		return nil, err
	}
	return found(r.people.Get(ctx, uid))
}

// Film is the resolver for the film field.
func (r *queryResolver) Film(ctx context.Context, id string) (*models.Film, error) {
	uid, ok, err := parseID(TypeFilm, id)
	if err != nil || !ok {
		return nil, err
	}
	return found(r.films.Get(ctx, uid))
}

// Planet is the resolver for the planet field.
func (r *queryResolver) Planet(ctx context.Context, id string) (*models.Planet, error) {
	uid, ok, err := parseID(TypePlanet, id)
	if err != nil || !ok {
		return nil, err
	}
	return found(r.planets.Get(ctx, uid))
}

// Species is the resolver for the species field.
func (r *queryResolver) Species(ctx context.Context, id string) (*models.Species, error) {
	uid, ok, err := parseID(TypeSpecies, id)
	if err != nil || !ok {
		return nil, err
	}
	return found(r.species.Get(ctx, uid))
}

// AllPeople is the resolver for the allPeople field.
func (r *queryResolver) AllPeople(ctx context.Context, first *int, after *string, name *string) (*model.PersonConnection, error) {
	people, err := r.people.Search(ctx, value(name))
	if err != nil {
		return nil, err
	}
	return personConnection(people, first, after, r.maxFirst)
}

// AllFilms is the resolver for the allFilms field.
func (r *queryResolver) AllFilms(ctx context.Context, first *int, after *string) (*model.FilmConnection, error) {
	films, err := r.films.List(ctx, models.ListFilter{})
	if err != nil {
		return nil, err
	}
	return filmConnection(films, first, after, r.maxFirst)
}

// AllPlanets is the resolver for the allPlanets field.
func (r *queryResolver) AllPlanets(ctx context.Context, first *int, after *string) (*model.PlanetConnection, error) {
	planets, err := r.planets.List(ctx, models.ListFilter{})
	if err != nil {
		return nil, err
	}
	return planetConnection(planets, first, after, r.maxFirst)
}

// AllSpecies is the resolver for the allSpecies field.
func (r *queryResolver) AllSpecies(ctx context.Context, first *int, after *string) (*model.SpeciesConnection, error) {
	species, err := r.species.List(ctx, models.ListFilter{})
	if err != nil {
		return nil, err
	}
	return speciesConnection(species, first, after, r.maxFirst)
}

// SearchPeople is the resolver for the searchPeople field.
func (r *queryResolver) SearchPeople(ctx context.Context, name *string) ([]*models.Person, error) {
	return r.people.Search(ctx, value(name))
}

// FilmsByCharacter is the resolver for the filmsByCharacter field.
func (r *queryResolver) FilmsByCharacter(ctx context.Context, characterID string) ([]*models.Film, error) {
	id, ok, err := parseID(TypePerson, characterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*models.Film{}, nil
	}
	return r.people.FilmsByCharacter(ctx, id)
}

// CharactersInFilm is the resolver for the charactersInFilm field.
func (r *queryResolver) CharactersInFilm(ctx context.Context, filmID string) ([]*models.Person, error) {
	id, ok, err := parseID(TypeFilm, filmID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*models.Person{}, nil
	}
	return r.films.CharactersInFilm(ctx, id)
}

// Stats is the resolver for the stats field.
func (r *queryResolver) Stats(ctx context.Context) (*models.Stats, error) {
	return r.stats.Get(ctx)
}

// CreatePerson is the resolver for the createPerson field.
func (r *mutationResolver) CreatePerson(ctx context.Context, name string, height *string, mass *string, hairColor *string, skinColor *string, eyeColor *string, birthYear *string, gender *string, homeworldID *string) (*model.CreatePersonPayload, error) {
	input := &services.CreatePersonInput{
		Name:      name,
		Height:    value(height),
		Mass:      value(mass),
		HairColor: value(hairColor),
		SkinColor: value(skinColor),
		EyeColor:  value(eyeColor),
		BirthYear: value(birthYear),
		Gender:    value(gender),
	}
	if raw := value(homeworldID); raw != "" {
		id, ok, err := parseID(TypePlanet, raw)
		if err != nil || !ok {
			return &model.CreatePersonPayload{Errors: []string{services.MsgPlanetNotFound}}, nil
		}
		input.HomeworldID = &id
	}

	res, err := r.people.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return &model.CreatePersonPayload{Person: res.Entity, Success: res.Success, Errors: errorList(res.Errors)}, nil
}

// CreatePlanet is the resolver for the createPlanet field.
func (r *mutationResolver) CreatePlanet(ctx context.Context, name string, rotationPeriod *string, orbitalPeriod *string, diameter *string, climate *string, gravity *string, terrain *string, surfaceWater *string, population *string) (*model.CreatePlanetPayload, error) {
	res, err := r.planets.Create(ctx, &services.CreatePlanetInput{
		Name:           name,
		RotationPeriod: value(rotationPeriod),
		OrbitalPeriod:  value(orbitalPeriod),
		Diameter:       value(diameter),
		Climate:        value(climate),
		Gravity:        value(gravity),
		Terrain:        value(terrain),
		SurfaceWater:   value(surfaceWater),
		Population:     value(population),
	})
	if err != nil {
		return nil, err
	}
	return &model.CreatePlanetPayload{Planet: res.Entity, Success: res.Success, Errors: errorList(res.Errors)}, nil
}

// CreateFilm is the resolver for the createFilm field.
func (r *mutationResolver) CreateFilm(ctx context.Context, title string, episodeID int, openingCrawl string, director string, producer string, releaseDate string, planetIds []*string, characterIds []*string) (*model.CreateFilmPayload, error) {
	input := &services.CreateFilmInput{
		Title:        title,
		EpisodeID:    episodeID,
		OpeningCrawl: openingCrawl,
		Director:     director,
		Producer:     producer,
		ReleaseDate:  releaseDate,
	}

	var problems []string
	input.PlanetIDs, problems = collectIDs(TypePlanet, planetIds, services.MsgPlanetNotFound, problems)
	input.CharacterIDs, problems = collectIDs(TypePerson, characterIds, services.MsgCharacterNotFound, problems)
	if len(problems) > 0 {
		return &model.CreateFilmPayload{Errors: problems}, nil
	}

	res, err := r.films.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return &model.CreateFilmPayload{Film: res.Entity, Success: res.Success, Errors: errorList(res.Errors)}, nil
}

// Film returns FilmResolver implementation.
func (r *Resolver) Film() FilmResolver { return &filmResolver{r} }

// Mutation returns MutationResolver implementation.
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

// Person returns PersonResolver implementation.
func (r *Resolver) Person() PersonResolver { return &personResolver{r} }

// Planet returns PlanetResolver implementation.
func (r *Resolver) Planet() PlanetResolver { return &planetResolver{r} }

// Query returns QueryResolver implementation.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

// Species returns SpeciesResolver implementation.
func (r *Resolver) Species() SpeciesResolver { return &speciesResolver{r} }

type filmResolver struct{ *Resolver }
type mutationResolver struct{ *Resolver }
type personResolver struct{ *Resolver }
type planetResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type speciesResolver struct{ *Resolver }
