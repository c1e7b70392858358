package httpserver

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/tastelog/tastelog/internal/domain"
)

// buildSchema assembles the GraphQL schema. Type and field names follow the
// public API contract: snake_case leaf fields, dish → location,
// dish → ratings → user nesting.
func (s *Server) buildSchema() (graphql.Schema, error) {
	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"address":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"postal_code": &graphql.Field{Type: graphql.String},
			"created_at":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"updated_at":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	tagType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tag",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"created_at": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"username":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"created_at": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"updated_at": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	ratingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Rating",
		Fields: graphql.Fields{
			"id":                  &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"user":                &graphql.Field{Type: graphql.NewNonNull(userType)},
			"taste_rating":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"portion_rating":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"presentation_rating": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"notes":               &graphql.Field{Type: graphql.String},
			"created_at":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"updated_at":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	dishType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Dish",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description":     &graphql.Field{Type: graphql.String},
			"price":           &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"portion_size":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"location":        &graphql.Field{Type: graphql.NewNonNull(locationType)},
			"tags":            &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(tagType)))},
			"ratings":         &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(ratingType)))},
			"aggregate_score": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"rating_count":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"created_at":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"updated_at":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	// Rating.dish and User.ratings close the type cycles, so they are added
	// after both object types exist.
	ratingType.AddFieldConfig("dish", &graphql.Field{Type: graphql.NewNonNull(dishType)})
	userType.AddFieldConfig("ratings", &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(ratingType))),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			user, ok := p.Source.(*userView)
			if !ok {
				return []*ratingView{}, nil
			}
			ratings, err := s.queries.UserRatings(p.Context, user.ID)
			if err != nil {
				return nil, s.translateError(err)
			}
			views := make([]*ratingView, 0, len(ratings))
			for _, rating := range ratings {
				views = append(views, toProfileRatingView(rating))
			}
			return views, nil
		},
	})

	authPayloadType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"user":  &graphql.Field{Type: graphql.NewNonNull(userType)},
		},
	})

	dishFilterInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "DishFilter",
		Fields: graphql.InputObjectConfigFieldMap{
			"search":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"location_id": &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"tag_ids":     &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.ID))},
			"min_price":   &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"max_price":   &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"min_rating":  &graphql.InputObjectFieldConfig{Type: graphql.Float},
		},
	})

	locationInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LocationInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"address":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"postal_code": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	createDishInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateDishInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":         &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"price":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"portion_size": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"location_id":  &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"location":     &graphql.InputObjectFieldConfig{Type: locationInput},
			"tag_ids":      &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.ID))},
		},
	})

	updateDishInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateDishInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":         &graphql.InputObjectFieldConfig{Type: graphql.String},
			"description":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"price":        &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"portion_size": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"location_id":  &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"tag_ids":      &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.ID))},
		},
	})

	createRatingInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateRatingInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"dish_id":             &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"taste_rating":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"portion_rating":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"presentation_rating": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"notes":               &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	updateRatingInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateRatingInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"taste_rating":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"portion_rating":      &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"presentation_rating": &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"notes":               &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	createUserInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateUserInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"username": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	loginInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LoginInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"username": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.String},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"dishes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(dishType))),
				Args: graphql.FieldConfigArgument{
					"filter": &graphql.ArgumentConfig{Type: dishFilterInput},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dishes, err := s.queries.ListDishes(p.Context, decodeDishFilter(p.Args["filter"]))
					if err != nil {
						return nil, s.translateError(err)
					}
					return toDishViews(dishes), nil
				},
			},
			"dish": &graphql.Field{
				Type: dishType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dish, err := s.queries.GetDish(p.Context, reqString(p.Args, "id"))
					if err != nil {
						return s.nullIfNotFound(err)
					}
					return toDishView(dish), nil
				},
			},
			"featuredDishes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(dishType))),
				Args: graphql.FieldConfigArgument{
					"min_rating": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dishes, err := s.queries.FeaturedDishes(p.Context, reqFloat(p.Args, "min_rating"))
					if err != nil {
						return nil, s.translateError(err)
					}
					return toDishViews(dishes), nil
				},
			},
			"searchDishes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(dishType))),
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dishes, err := s.queries.SearchDishes(p.Context, reqString(p.Args, "query"))
					if err != nil {
						return nil, s.translateError(err)
					}
					return toDishViews(dishes), nil
				},
			},
			"locations": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(locationType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					locations, err := s.queries.Locations(p.Context)
					if err != nil {
						return nil, s.translateError(err)
					}
					views := make([]locationView, 0, len(locations))
					for _, location := range locations {
						views = append(views, toLocationView(location))
					}
					return views, nil
				},
			},
			"location": &graphql.Field{
				Type: locationType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					location, err := s.queries.Location(p.Context, reqString(p.Args, "id"))
					if err != nil {
						return s.nullIfNotFound(err)
					}
					return toLocationView(location), nil
				},
			},
			"tags": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(tagType))),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					tags, err := s.queries.Tags(p.Context)
					if err != nil {
						return nil, s.translateError(err)
					}
					views := make([]tagView, 0, len(tags))
					for _, tag := range tags {
						views = append(views, toTagView(tag))
					}
					return views, nil
				},
			},
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user, err := s.users.ByID(p.Context, reqString(p.Args, "id"))
					if err != nil {
						return s.nullIfNotFound(err)
					}
					return toUserView(user), nil
				},
			},
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					actor := actorFrom(p.Context)
					if actor == nil {
						return nil, nil
					}
					return toUserView(*actor), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createUserInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input := argMap(p.Args["input"])
					user, token, err := s.identity.Register(p.Context,
						reqString(input, "username"), reqString(input, "email"), reqString(input, "password"))
					if err != nil {
						return nil, s.translateError(err)
					}
					return authPayloadView{Token: token, User: toUserView(user)}, nil
				},
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authPayloadType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(loginInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input := argMap(p.Args["input"])
					login := reqString(input, "email")
					if login == "" {
						login = reqString(input, "username")
					}
					if login == "" {
						return nil, s.translateError(domain.Invalid("username", "username or email is required"))
					}
					user, token, err := s.identity.Login(p.Context, login, reqString(input, "password"))
					if err != nil {
						return nil, s.translateError(err)
					}
					return authPayloadView{Token: token, User: toUserView(user)}, nil
				},
			},
			"createDish": &graphql.Field{
				Type: graphql.NewNonNull(dishType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createDishInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dish, err := s.mutations.CreateDish(p.Context, decodeDishInput(p.Args["input"]))
					if err != nil {
						return nil, s.translateError(err)
					}
					return s.shapedDishView(p.Context, dish.ID)
				},
			},
			"updateDish": &graphql.Field{
				Type: graphql.NewNonNull(dishType),
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateDishInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					dish, err := s.mutations.UpdateDish(p.Context, reqString(p.Args, "id"), decodeDishPatch(p.Args["input"]))
					if err != nil {
						return nil, s.translateError(err)
					}
					return s.shapedDishView(p.Context, dish.ID)
				},
			},
			"createRating": &graphql.Field{
				Type: graphql.NewNonNull(ratingType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createRatingInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rating, err := s.mutations.CreateRating(p.Context, decodeRatingInput(p.Args["input"]), actorFrom(p.Context))
					if err != nil {
						return nil, s.translateError(err)
					}
					return s.shapedRatingView(p.Context, rating)
				},
			},
			"updateRating": &graphql.Field{
				Type: graphql.NewNonNull(ratingType),
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateRatingInput)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rating, err := s.mutations.UpdateRating(p.Context, reqString(p.Args, "id"), decodeRatingPatch(p.Args["input"]), actorFrom(p.Context))
					if err != nil {
						return nil, s.translateError(err)
					}
					return s.shapedRatingView(p.Context, rating)
				},
			},
			"deleteRating": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := s.mutations.DeleteRating(p.Context, reqString(p.Args, "id"), actorFrom(p.Context)); err != nil {
						return nil, s.translateError(err)
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType, Mutation: mutationType})
}

// shapedDishView re-reads a dish through the query service so mutation
// responses carry the same aggregate every read path computes.
func (s *Server) shapedDishView(ctx context.Context, id string) (interface{}, error) {
	dish, err := s.queries.GetDish(ctx, id)
	if err != nil {
		return nil, s.translateError(err)
	}
	return toDishView(dish), nil
}

func (s *Server) shapedRatingView(ctx context.Context, rating domain.Rating) (interface{}, error) {
	view := toRatingView(rating)
	dish, err := s.queries.GetDish(ctx, rating.DishID)
	if err != nil {
		return nil, s.translateError(err)
	}
	view.Dish = toDishView(dish)
	return view, nil
}

func (s *Server) nullIfNotFound(err error) (interface{}, error) {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return nil, nil
	}
	return nil, s.translateError(err)
}
