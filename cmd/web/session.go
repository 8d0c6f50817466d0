package main

type sessionKey string

const authenticatedSessionKey = sessionKey("authenticated")
