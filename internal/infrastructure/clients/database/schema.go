package database

// Timestamps are stored as unix milliseconds so both drivers scan them the
// same way. Rating tables share one shape keyed by item_id.

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trips (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	start_date  TEXT NOT NULL,
	end_date    TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS destinations (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	trip_id     INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	order_index INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_destinations_trip ON destinations(trip_id, order_index);

CREATE TABLE IF NOT EXISTS participants (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	uid             TEXT NOT NULL UNIQUE,
	trip_id         INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name            TEXT NOT NULL,
	is_current_user INTEGER NOT NULL DEFAULT 0,
	role            TEXT NOT NULL DEFAULT 'participant',
	created_at      INTEGER NOT NULL,
	UNIQUE(trip_id, name)
);

CREATE TABLE IF NOT EXISTS activities (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	trip_id     INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	cost        REAL NOT NULL DEFAULT 0,
	duration    TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_trip ON activities(trip_id);

CREATE TABLE IF NOT EXISTS restaurants (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	trip_id        INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	category       TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	cost           REAL NOT NULL DEFAULT 0,
	duration       TEXT NOT NULL DEFAULT '',
	price_range    TEXT NOT NULL DEFAULT '',
	group_capacity INTEGER NOT NULL DEFAULT 0,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_restaurants_trip ON restaurants(trip_id);

CREATE TABLE IF NOT EXISTS restaurant_dietary_options (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	restaurant_id  INTEGER NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	dietary_option TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dietary_restaurant ON restaurant_dietary_options(restaurant_id);

CREATE TABLE IF NOT EXISTS activity_ratings (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id        INTEGER NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
	participant_id INTEGER NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
	rating         INTEGER NOT NULL CHECK (rating BETWEEN 0 AND 5),
	updated_at     INTEGER NOT NULL,
	UNIQUE(item_id, participant_id)
);

CREATE TABLE IF NOT EXISTS restaurant_ratings (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	item_id        INTEGER NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	participant_id INTEGER NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
	rating         INTEGER NOT NULL CHECK (rating BETWEEN 0 AND 5),
	updated_at     INTEGER NOT NULL,
	UNIQUE(item_id, participant_id)
);

CREATE TABLE IF NOT EXISTS travel (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	trip_id            INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	participant_id     INTEGER REFERENCES participants(id) ON DELETE SET NULL,
	mode               TEXT NOT NULL DEFAULT '',
	departure_location TEXT NOT NULL DEFAULT '',
	arrival_location   TEXT NOT NULL DEFAULT '',
	departure_time     TEXT NOT NULL DEFAULT '',
	arrival_time       TEXT NOT NULL DEFAULT '',
	confirmation       TEXT NOT NULL DEFAULT '',
	notes              TEXT NOT NULL DEFAULT '',
	created_at         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_travel_trip ON travel(trip_id);

CREATE TABLE IF NOT EXISTS lodging (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	trip_id      INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	address      TEXT NOT NULL DEFAULT '',
	check_in     TEXT NOT NULL DEFAULT '',
	check_out    TEXT NOT NULL DEFAULT '',
	cost         REAL NOT NULL DEFAULT 0,
	confirmation TEXT NOT NULL DEFAULT '',
	notes        TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lodging_trip ON lodging(trip_id);

CREATE TABLE IF NOT EXISTS logistics (
	id                      INTEGER PRIMARY KEY AUTOINCREMENT,
	trip_id                 INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	category                TEXT NOT NULL DEFAULT '',
	title                   TEXT NOT NULL,
	details                 TEXT NOT NULL DEFAULT '',
	assigned_participant_id INTEGER REFERENCES participants(id) ON DELETE SET NULL,
	due_date                TEXT NOT NULL DEFAULT '',
	completed               INTEGER NOT NULL DEFAULT 0,
	created_at              INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_logistics_trip ON logistics(trip_id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS trips (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	start_date  TEXT NOT NULL,
	end_date    TEXT NOT NULL,
	created_at  BIGINT NOT NULL,
	updated_at  BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS destinations (
	id          BIGSERIAL PRIMARY KEY,
	trip_id     BIGINT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	order_index INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_destinations_trip ON destinations(trip_id, order_index);

CREATE TABLE IF NOT EXISTS participants (
	id              BIGSERIAL PRIMARY KEY,
	uid             TEXT NOT NULL UNIQUE,
	trip_id         BIGINT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name            TEXT NOT NULL,
	is_current_user BOOLEAN NOT NULL DEFAULT FALSE,
	role            TEXT NOT NULL DEFAULT 'participant',
	created_at      BIGINT NOT NULL,
	UNIQUE(trip_id, name)
);

CREATE TABLE IF NOT EXISTS activities (
	id          BIGSERIAL PRIMARY KEY,
	trip_id     BIGINT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT '',
	cost        DOUBLE PRECISION NOT NULL DEFAULT 0,
	duration    TEXT NOT NULL DEFAULT '',
	created_at  BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_trip ON activities(trip_id);

CREATE TABLE IF NOT EXISTS restaurants (
	id             BIGSERIAL PRIMARY KEY,
	trip_id        BIGINT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	category       TEXT NOT NULL DEFAULT '',
	location       TEXT NOT NULL DEFAULT '',
	cost           DOUBLE PRECISION NOT NULL DEFAULT 0,
	duration       TEXT NOT NULL DEFAULT '',
	price_range    TEXT NOT NULL DEFAULT '',
	group_capacity INTEGER NOT NULL DEFAULT 0,
	created_at     BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_restaurants_trip ON restaurants(trip_id);

CREATE TABLE IF NOT EXISTS restaurant_dietary_options (
	id             BIGSERIAL PRIMARY KEY,
	restaurant_id  BIGINT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	dietary_option TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dietary_restaurant ON restaurant_dietary_options(restaurant_id);

CREATE TABLE IF NOT EXISTS activity_ratings (
	id             BIGSERIAL PRIMARY KEY,
	item_id        BIGINT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
	participant_id BIGINT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
	rating         INTEGER NOT NULL CHECK (rating BETWEEN 0 AND 5),
	updated_at     BIGINT NOT NULL,
	UNIQUE(item_id, participant_id)
);

CREATE TABLE IF NOT EXISTS restaurant_ratings (
	id             BIGSERIAL PRIMARY KEY,
	item_id        BIGINT NOT NULL REFERENCES restaurants(id) ON DELETE CASCADE,
	participant_id BIGINT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
	rating         INTEGER NOT NULL CHECK (rating BETWEEN 0 AND 5),
	updated_at     BIGINT NOT NULL,
	UNIQUE(item_id, participant_id)
);

CREATE TABLE IF NOT EXISTS travel (
	id                 BIGSERIAL PRIMARY KEY,
	trip_id            BIGINT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	participant_id     BIGINT REFERENCES participants(id) ON DELETE SET NULL,
	mode               TEXT NOT NULL DEFAULT '',
	departure_location TEXT NOT NULL DEFAULT '',
	arrival_location   TEXT NOT NULL DEFAULT '',
	departure_time     TEXT NOT NULL DEFAULT '',
	arrival_time       TEXT NOT NULL DEFAULT '',
	confirmation       TEXT NOT NULL DEFAULT '',
	notes              TEXT NOT NULL DEFAULT '',
	created_at         BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_travel_trip ON travel(trip_id);

CREATE TABLE IF NOT EXISTS lodging (
	id           BIGSERIAL PRIMARY KEY,
	trip_id      BIGINT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	name         TEXT NOT NULL,
	address      TEXT NOT NULL DEFAULT '',
	check_in     TEXT NOT NULL DEFAULT '',
	check_out    TEXT NOT NULL DEFAULT '',
	cost         DOUBLE PRECISION NOT NULL DEFAULT 0,
	confirmation TEXT NOT NULL DEFAULT '',
	notes        TEXT NOT NULL DEFAULT '',
	created_at   BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lodging_trip ON lodging(trip_id);

CREATE TABLE IF NOT EXISTS logistics (
	id                      BIGSERIAL PRIMARY KEY,
	trip_id                 BIGINT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
	category                TEXT NOT NULL DEFAULT '',
	title                   TEXT NOT NULL,
	details                 TEXT NOT NULL DEFAULT '',
	assigned_participant_id BIGINT REFERENCES participants(id) ON DELETE SET NULL,
	due_date                TEXT NOT NULL DEFAULT '',
	completed               BOOLEAN NOT NULL DEFAULT FALSE,
	created_at              BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_logistics_trip ON logistics(trip_id);
`
